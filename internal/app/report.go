package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/output"
	"github.com/blackwell-systems/deltalens/internal/report"
	"github.com/blackwell-systems/deltalens/internal/view"
)

var (
	reportFlagCSV    bool
	reportFlagCSVDir string
)

var reportCmd = &cobra.Command{
	Use:   "report [hash]",
	Short: "Render one report hash",
	Long: `Report renders a single report to the terminal. The hash uses the same
form as the viewer's location, e.g. "show=sessions;user=bob@x.com".

Examples:
  deltalens report                                # daily report
  deltalens report 'show=ndeltarange;user=bob@x.com'
  deltalens report show=sessions --csv --csv-dir ./out
  deltalens report show=stats --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportFlagCSV, "csv", false, "Save every downloadable table as CSV")
	reportCmd.Flags().StringVar(&reportFlagCSVDir, "csv-dir", "", "Directory for --csv files (default download_dir, else stdout)")
	rootCmd.AddCommand(reportCmd)
}

// pageJSON is the --json form of a rendered report.
type pageJSON struct {
	Hash        string        `json:"hash"`
	Kind        report.Kind   `json:"kind"`
	Description string        `json:"description"`
	Controls    view.Controls `json:"controls"`
	Blocks      []blockJSON   `json:"blocks"`
	MapPaths    int           `json:"map_paths"`
}

type blockJSON struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Target   string      `json:"target,omitempty"`
	Columns  []string    `json:"columns,omitempty"`
	Rows     [][]string  `json:"rows,omitempty"`
	Download string      `json:"download,omitempty"`
	Body     []blockJSON `json:"body,omitempty"`
}

func runReport(cmd *cobra.Command, args []string) error {
	hash := report.DefaultHash
	if len(args) == 1 {
		hash = args[0]
	}

	ld, err := loadData(cmd.Context(), newLogger())
	if err != nil {
		return err
	}
	defer ld.Close()

	snap, err := view.Build(ld.data, hash)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshotJSON(snap)); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	} else {
		fmt.Fprintln(out, output.StyleHeader.Render(snap.Description))
		fmt.Fprintln(out, output.StyleMuted.Render("#"+snap.Hash))
		width := ld.cfg.Output.Width
		if width == 0 {
			width = output.TerminalWidth(os.Stdout)
		}
		fmt.Fprint(out, output.RenderPage(snap.Root, snap.Map, output.PageOptions{
			MaxCellWidth: output.CellWidthFor(width),
		}))
	}

	if !reportFlagCSV {
		return nil
	}
	dir := reportFlagCSVDir
	if dir == "" {
		dir = ld.cfg.DownloadDir
	}
	// Streamed CSV must not trail the JSON document on stdout.
	stream := out
	if flagJSON {
		stream = cmd.ErrOrStderr()
	}
	saver := report.PickSaver(dir, stream)
	saved, err := report.SaveAll(saver, snap.Root)
	if err != nil {
		return fmt.Errorf("saving CSV: %w", err)
	}
	if _, ok := saver.(report.FileSaver); ok {
		for _, p := range saved {
			fmt.Fprintln(cmd.ErrOrStderr(), "saved", p)
		}
	}
	return nil
}

func snapshotJSON(snap *view.Snapshot) pageJSON {
	p := pageJSON{
		Hash:        snap.Hash,
		Kind:        snap.Mode.Kind(),
		Description: snap.Description,
		Controls:    snap.Controls,
		Blocks:      blocksJSON(snap.Root),
	}
	if snap.Map != nil {
		p.MapPaths = len(snap.Map.Glyphs)
	}
	return p
}

func blocksJSON(e *report.Element) []blockJSON {
	var out []blockJSON
	for _, b := range e.Blocks {
		switch b := b.(type) {
		case report.Heading:
			out = append(out, blockJSON{Type: "heading", Text: b.Text})
		case report.Text:
			out = append(out, blockJSON{Type: "text", Text: b.Text})
		case report.Pre:
			out = append(out, blockJSON{Type: "pre", Text: b.Text})
		case report.Button:
			bj := blockJSON{Type: "button", Text: b.Cell.String()}
			if m := b.Cell.Target(); m != nil {
				bj.Target = m.Hash()
			}
			out = append(out, bj)
		case report.Panel:
			bj := blockJSON{Type: "panel", Text: b.Title}
			if b.Body != nil {
				bj.Body = blocksJSON(b.Body)
			}
			out = append(out, bj)
		case *report.Table:
			bj := blockJSON{Type: "table", Columns: b.Columns, Download: b.Download}
			for _, row := range b.Rows {
				vals := make([]string, len(row))
				for i, c := range row {
					vals[i] = c.String()
				}
				bj.Rows = append(bj.Rows, vals)
			}
			out = append(out, bj)
		}
	}
	return out
}
