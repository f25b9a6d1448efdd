package report

import (
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// palette colors users by their position in the sorted user list, so the
// same hash always draws the same colors.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// UserColor returns the palette color for the i-th user.
func UserColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Glyph is one walk path drawn on the map.
type Glyph struct {
	ID      int
	User    string
	Color   string
	Path    []analyze.GeoPoint
	Range   analyze.TimeRange
	layer   *MapLayer
	onClick func() Mode
}

// SetFocus makes g the layer's only focused glyph.
func (g *Glyph) SetFocus() {
	if g.layer != nil {
		g.layer.focused = g
	}
}

// Focused reports whether g holds the layer's focus.
func (g *Glyph) Focused() bool {
	return g.layer != nil && g.layer.focused == g
}

// Target returns the report the glyph leads to when clicked, or nil.
func (g *Glyph) Target() Mode {
	if g.onClick == nil {
		return nil
	}
	return g.onClick()
}

// MapLayer collects the glyphs a report draws.
type MapLayer struct {
	Glyphs  []*Glyph
	focused *Glyph
}

// NewMapLayer returns an empty layer.
func NewMapLayer() *MapLayer {
	return &MapLayer{}
}

// AddCluster draws cluster's located events as one path. onClick may be nil.
func (m *MapLayer) AddCluster(c analyze.Cluster, color string, onClick func() Mode) *Glyph {
	g := &Glyph{
		ID:      len(m.Glyphs),
		User:    c.User,
		Color:   color,
		Path:    c.Path(),
		Range:   c.Range,
		layer:   m,
		onClick: onClick,
	}
	m.Glyphs = append(m.Glyphs, g)
	return g
}

// Focused returns the focused glyph, or nil.
func (m *MapLayer) Focused() *Glyph {
	return m.focused
}

// Empty reports whether there is nothing located to draw.
func (m *MapLayer) Empty() bool {
	for _, g := range m.Glyphs {
		if len(g.Path) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the south-west and north-east corners of every located
// point. ok is false when nothing is located.
func (m *MapLayer) Bounds() (sw, ne analyze.GeoPoint, ok bool) {
	for _, g := range m.Glyphs {
		for _, p := range g.Path {
			if !ok {
				sw, ne, ok = p, p, true
				continue
			}
			sw.Lat = min(sw.Lat, p.Lat)
			sw.Long = min(sw.Long, p.Long)
			ne.Lat = max(ne.Lat, p.Lat)
			ne.Long = max(ne.Long, p.Long)
		}
	}
	return sw, ne, ok
}

// drawUsers adds one glyph per user cluster with no click action.
func drawUsers(m *MapLayer, list *analyze.NormChangeList, gap time.Duration) {
	for i, ul := range list.ByUser() {
		color := UserColor(i)
		for _, c := range ul.List.Clusters(gap) {
			m.AddCluster(c, color, nil)
		}
	}
}
