package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/output"
	"github.com/blackwell-systems/deltalens/internal/report"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List report kinds",
	Long:  `Modes lists every report kind in menu order with the filters it reads.`,
	Args:  cobra.NoArgs,
	RunE:  runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Descriptors())
	}

	tbl := output.NewTable("Hash", "Description", "Filters")
	for _, d := range report.Descriptors() {
		var filters []string
		if d.UsesVersion {
			filters = append(filters, "ver")
		}
		if d.UsesUsers {
			filters = append(filters, "user")
		}
		if d.UsesTimeRange {
			filters = append(filters, "dateutcstart/dateutcend")
		}
		tbl.AddRow("show="+string(d.Name), d.Description, strings.Join(filters, ", "))
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}
