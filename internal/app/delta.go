package app

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var deltaFlagYAML bool

var deltaCmd = &cobra.Command{
	Use:   "delta <version>",
	Short: "Dump one raw change",
	Long: `Delta prints the raw change with the given version as indented JSON, the
same view as "show=delta;ver=N". Use --yaml for YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelta,
}

func init() {
	deltaCmd.Flags().BoolVar(&deltaFlagYAML, "yaml", false, "Output as YAML")
	rootCmd.AddCommand(deltaCmd)
}

func runDelta(cmd *cobra.Command, args []string) error {
	ver, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("version must be an integer: %q", args[0])
	}

	ld, err := loadData(cmd.Context(), newLogger())
	if err != nil {
		return err
	}
	defer ld.Close()

	d, err := ld.data.Changelist.Get(ver)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if deltaFlagYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(d)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
