package app

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/tui"
	"github.com/blackwell-systems/deltalens/internal/view"
)

var browseCmd = &cobra.Command{
	Use:   "browse [hash]",
	Short: "Browse reports in the terminal",
	Long: `Browse opens an interactive terminal viewer. Tab cycles through the
clickable cells, enter follows one, b and f walk the history, and ':' jumps
to a hash or a link number.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	log := newLogger()
	ld, err := loadData(cmd.Context(), log)
	if err != nil {
		return err
	}
	defer ld.Close()

	start := ""
	if len(args) == 1 {
		start = args[0]
	}
	port := view.NewMemoryPort(start)
	// Render warnings would draw over the full-screen view.
	ctrl := view.NewController(port, ld.data, log.Level(zerolog.Disabled))
	return tui.Run(ctrl, port)
}
