// Package app contains the Cobra command tree for deltalens.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/logging"
	"github.com/blackwell-systems/deltalens/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "deltalens",
	Short: "Drill-down reports over a sheet's change log",
	Long: `deltalens loads a sheet's change log (every uploaded edit, with who made
it, when and where) and turns it into linked reports: daily activity per
user, canvassing sessions, answer summaries and raw changes. Every report is
addressed by a hash such as "show=sessions;user=bob@x.com", and every
clickable cell leads to another hash.

Run 'deltalens serve' for the browser viewer or 'deltalens browse' for the
terminal one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.SetNoColor(flagNoColor)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "deltalens", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  serve     Start the web report viewer")
		fmt.Fprintln(out, "  browse    Browse reports in the terminal")
		fmt.Fprintln(out, "  report    Render one report hash")
		fmt.Fprintln(out, "  delta     Dump one raw change")
		fmt.Fprintln(out, "  modes     List report kinds")
		fmt.Fprintln(out, "  sync      Refresh the local change cache")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/deltalens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// newLogger builds the command logger. Logs go to stderr so report output
// on stdout stays clean.
func newLogger() zerolog.Logger {
	return logging.New(os.Stderr, logging.Options{
		Verbose: flagVerbose,
		JSON:    flagJSON,
		NoColor: flagNoColor,
	})
}
