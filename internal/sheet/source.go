// Package sheet fetches a sheet's header, household index and delta log,
// either from an export directory or from a sheet server, and runs the
// startup load sequence.
package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/config"
)

// ErrUnknownSource is returned for a source kind with no implementation.
var ErrUnknownSource = errors.New("unknown sheet source")

// Info is the sheet header shown above every report.
type Info struct {
	ID            string `json:"SheetId"`
	Name          string `json:"Name"`
	ParentName    string `json:"ParentName"`
	LatestVersion int    `json:"LatestVersion"`
	CountRecords  int    `json:"CountRecords"`
}

// Source supplies the raw data for one sheet.
type Source interface {
	Info(ctx context.Context) (Info, error)
	// Households returns an empty index when the sheet has none.
	Households(ctx context.Context) (analyze.HouseholdIndex, error)
	// Deltas returns every delta with a version greater than after.
	Deltas(ctx context.Context, after int) ([]analyze.Delta, error)
}

// NewSource builds the source the configuration names.
func NewSource(cfg config.Source) (Source, error) {
	switch cfg.Kind {
	case config.SourceFile:
		return NewFileSource(cfg.Path), nil
	case config.SourceHTTP:
		if cfg.URL == "" || cfg.SheetID == "" {
			return nil, fmt.Errorf("%w: http source needs source.url and source.sheet_id", config.ErrInvalid)
		}
		return NewHTTPSource(cfg.URL, cfg.SheetID, cfg.Token, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Kind)
	}
}

func after(deltas []analyze.Delta, version int) []analyze.Delta {
	if version <= 0 {
		return deltas
	}
	out := deltas[:0:0]
	for _, d := range deltas {
		if d.Version > version {
			out = append(out, d)
		}
	}
	return out
}
