package web

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/blackwell-systems/deltalens/internal/report"
)

const (
	mapWidth  = 640
	mapHeight = 320
	mapMargin = 12
)

type mapView struct {
	Width, Height int
	Paths         []pathView
}

type pathView struct {
	ID      int
	User    string
	Color   string
	Points  string
	Single  bool
	X, Y    float64
	Focused bool
	Href    template.URL
}

// projectMap fits every located point of m into the SVG box with an
// equirectangular projection. It returns nil when nothing is located.
// Glyphs with no click target link back to hash.
func projectMap(m *report.MapLayer, hash string) *mapView {
	if m == nil {
		return nil
	}
	sw, ne, ok := m.Bounds()
	if !ok {
		return nil
	}
	spanX := ne.Long - sw.Long
	spanY := ne.Lat - sw.Lat
	if spanX == 0 {
		spanX = 1e-6
	}
	if spanY == 0 {
		spanY = 1e-6
	}
	w := float64(mapWidth - 2*mapMargin)
	h := float64(mapHeight - 2*mapMargin)
	scale := min(w/spanX, h/spanY)

	v := &mapView{Width: mapWidth, Height: mapHeight}
	for _, g := range m.Glyphs {
		if len(g.Path) == 0 {
			continue
		}
		pts := make([]string, len(g.Path))
		var x, y float64
		for i, p := range g.Path {
			x = mapMargin + (p.Long-sw.Long)*scale
			y = mapHeight - mapMargin - (p.Lat-sw.Lat)*scale
			pts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		pv := pathView{
			ID:      g.ID,
			User:    g.User,
			Color:   g.Color,
			Points:  strings.Join(pts, " "),
			Single:  len(g.Path) == 1,
			X:       x,
			Y:       y,
			Focused: g.Focused(),
			Href:    hashURL(hash),
		}
		if t := g.Target(); t != nil {
			pv.Href = hashURL(t.Hash())
		}
		v.Paths = append(v.Paths, pv)
	}
	return v
}
