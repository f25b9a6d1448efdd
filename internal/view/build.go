package view

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/deltalens/internal/report"
)

// Snapshot is one finished render cycle.
type Snapshot struct {
	Hash        string
	Mode        report.Mode
	Description string
	Controls    Controls
	Root        *report.Element
	Map         *report.MapLayer
	Context     *report.Context
}

// Build runs one render cycle for hash against data into a fresh page.
// A leading "#" is ignored; percent-encoded values are decoded by the
// filter parser, so a hash from Mode.Hash and one read back from a browser
// location build the same page. Nothing is kept when it fails.
func Build(data *report.Data, hash string) (*Snapshot, error) {
	m, err := report.Parse(strings.TrimPrefix(hash, "#"))
	if err != nil {
		return nil, err
	}

	ctx := report.NewContext(data, nil)
	if err := m.Render(ctx); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", m.Hash(), err)
	}
	return &Snapshot{
		Hash:        m.Hash(),
		Mode:        m,
		Description: m.Description(),
		Controls:    ControlsFor(m, data.Location),
		Root:        ctx.Element,
		Map:         ctx.Map,
		Context:     ctx,
	}, nil
}
