package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/deltalens/internal/report"
)

// PageOptions controls terminal page rendering.
type PageOptions struct {
	// Links numbers every interactive cell "[n]" in the order of
	// Element.Links, so a front end can activate link n-1.
	Links bool
	// MaxCellWidth truncates long table cells. Zero keeps them whole.
	MaxCellWidth int
	// Selected highlights link n (1-based). Zero selects nothing.
	Selected int
}

// RenderPage draws a report document and its map summary.
func RenderPage(root *report.Element, m *report.MapLayer, opts PageOptions) string {
	p := &pageWriter{opts: opts}
	if m != nil && len(m.Glyphs) > 0 {
		p.sb.WriteString(MapSummary(m))
		p.sb.WriteString("\n")
	}
	if root != nil {
		p.element(root, "")
	}
	return p.sb.String()
}

type pageWriter struct {
	sb   strings.Builder
	opts PageOptions
	link int
}

func (p *pageWriter) element(e *report.Element, indent string) {
	for _, b := range e.Blocks {
		switch b := b.(type) {
		case report.Heading:
			p.lines(indent, Section(b.Text))
			p.sb.WriteString("\n")
		case report.Text:
			p.lines(indent, " "+b.Text+"\n")
		case report.Pre:
			p.lines(indent+"   ", b.Text+"\n")
		case report.Button:
			p.lines(indent, " "+p.cell(b.Cell)+"\n")
		case report.Panel:
			p.lines(indent, "\n "+StyleBold.Render(b.Title)+"\n")
			if b.Body != nil {
				p.element(b.Body, indent+"  ")
			}
		case *report.Table:
			p.table(b, indent)
		}
	}
}

func (p *pageWriter) lines(indent, text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if line != "\n" {
			p.sb.WriteString(indent)
		}
		p.sb.WriteString(line)
	}
}

func (p *pageWriter) table(t *report.Table, indent string) {
	tbl := NewTable(t.Columns...)
	tbl.MaxCellWidth = p.opts.MaxCellWidth
	for _, row := range t.Rows {
		values := make([]string, len(row))
		for i, c := range row {
			values[i] = p.cell(c)
		}
		tbl.AddRow(values...)
	}
	p.lines(indent+" ", tbl.Render())
	if t.Download != "" {
		p.lines(indent, " "+StyleMuted.Render("csv: "+t.Download)+"\n")
	}
	p.sb.WriteString("\n")
}

func (p *pageWriter) cell(c report.Cell) string {
	switch c.Kind() {
	case report.CellScalar:
		return c.String()
	case report.CellColor:
		s := Swatch(c.Color())
		if g := c.Glyph(); g != nil && g.Focused() {
			s = StyleBold.Render("▶ ") + s
		}
		return p.marker(s)
	default:
		return p.marker(StyleLink.Render(c.String()))
	}
}

func (p *pageWriter) marker(s string) string {
	p.link++
	if !p.opts.Links {
		return s
	}
	tag := fmt.Sprintf("[%d]", p.link)
	if p.link == p.opts.Selected {
		return StyleWarning.Render(">"+tag) + " " + s
	}
	return StyleMuted.Render(tag) + " " + s
}

// MapSummary describes a map layer in text: one line per user path with
// its point count, plus the bounding box.
func MapSummary(m *report.MapLayer) string {
	var sb strings.Builder
	sb.WriteString(StyleHeader.Render("Map"))
	if sw, ne, ok := m.Bounds(); ok {
		sb.WriteString(StyleMuted.Render(fmt.Sprintf("  (%.4f,%.4f) to (%.4f,%.4f)", sw.Lat, sw.Long, ne.Lat, ne.Long)))
	} else {
		sb.WriteString(StyleMuted.Render("  no located events"))
	}
	sb.WriteString("\n")
	for _, g := range m.Glyphs {
		mark := "  "
		if g.Focused() {
			mark = "▶ "
		}
		fmt.Fprintf(&sb, " %s%s  %-24s %3d points  %s\n", mark, Swatch(g.Color), g.User, len(g.Path), g.Range.Pretty())
	}
	return sb.String()
}
