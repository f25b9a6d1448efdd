package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/deltalens/internal/config"
	"github.com/blackwell-systems/deltalens/internal/output"
	"github.com/blackwell-systems/deltalens/internal/report"
	"github.com/blackwell-systems/deltalens/internal/sheet"
	"github.com/blackwell-systems/deltalens/internal/store"
)

// loadSteps is the number of progress lines the loader reports.
const loadSteps = 4

// loaded is the resident data set a command works on.
type loaded struct {
	cfg    *config.Config
	result *sheet.Result
	data   *report.Data
	loader *sheet.Loader
	cache  *store.DB
}

func (l *loaded) Close() {
	if l.cache != nil {
		_ = l.cache.Close()
	}
}

// openLoader builds the configured source and, when enabled, opens the cache.
func openLoader(cfg *config.Config, log zerolog.Logger) (*sheet.Loader, *store.DB, error) {
	src, err := sheet.NewSource(cfg.Source)
	if err != nil {
		return nil, nil, err
	}
	var cache *store.DB
	if cfg.Cache.Enabled {
		cache, err = store.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
	}
	l := sheet.NewLoader(src, cache)
	l.Log = log
	return l, cache, nil
}

// loadData loads config, runs the startup sequence and builds report data.
// Progress bars go to stderr when it is a terminal.
func loadData(ctx context.Context, log zerolog.Logger) (*loaded, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	l, cache, err := openLoader(cfg, log)
	if err != nil {
		return nil, err
	}
	if isatty.IsTerminal(os.Stderr.Fd()) && !flagJSON {
		l.Progress = progressPrinter(os.Stderr)
	}

	res, err := l.Load(ctx)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, fmt.Errorf("loading sheet: %w", err)
	}
	data := report.NewData(res.Changelist, res.Households, cfg.Location(), cfg.Cluster.MaxGap)
	return &loaded{cfg: cfg, result: res, data: data, loader: l, cache: cache}, nil
}

// progressPrinter redraws one status line per loader step.
func progressPrinter(w io.Writer) func(string) {
	step := 0
	return func(msg string) {
		step++
		fmt.Fprintf(w, "\r\033[K%s %s", output.StepBar(step, loadSteps, 12), msg)
		if step >= loadSteps {
			fmt.Fprintln(w)
		}
	}
}
