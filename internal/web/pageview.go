package web

import (
	"html/template"

	"github.com/blackwell-systems/deltalens/internal/report"
)

// blockView is the template-facing form of a report.Block.
type blockView struct {
	Kind     string
	Text     string
	Link     *cellView
	Body     []blockView
	Columns  []string
	Rows     [][]cellView
	Download string
	Table    int
}

// cellView is one rendered cell. Href is set for navigate cells, Color and
// Glyph for color cells.
type cellView struct {
	Text  string
	Href  template.URL
	Color string
	Glyph int
}

func (c cellView) IsColor() bool { return c.Color != "" }

// pageView flattens a rendered document for the page template. Tables are
// numbered in Element.Tables order so /api/csv can find them again.
func pageView(root *report.Element) []blockView {
	n := 0
	return blocks(root, &n)
}

func blocks(e *report.Element, tables *int) []blockView {
	var out []blockView
	for _, b := range e.Blocks {
		switch b := b.(type) {
		case report.Heading:
			out = append(out, blockView{Kind: "heading", Text: b.Text})
		case report.Text:
			out = append(out, blockView{Kind: "text", Text: b.Text})
		case report.Pre:
			out = append(out, blockView{Kind: "pre", Text: b.Text})
		case report.Button:
			c := cell(b.Cell)
			out = append(out, blockView{Kind: "button", Link: &c})
		case report.Panel:
			v := blockView{Kind: "panel", Text: b.Title}
			if b.Body != nil {
				v.Body = blocks(b.Body, tables)
			}
			out = append(out, v)
		case *report.Table:
			v := blockView{Kind: "table", Columns: b.Columns, Download: b.Download, Table: *tables}
			*tables++
			for _, row := range b.Rows {
				cells := make([]cellView, len(row))
				for i, c := range row {
					cells[i] = cell(c)
				}
				v.Rows = append(v.Rows, cells)
			}
			out = append(out, v)
		}
	}
	return out
}

func cell(c report.Cell) cellView {
	v := cellView{Text: c.String(), Glyph: -1}
	switch c.Kind() {
	case report.CellNavigate:
		if m := c.Target(); m != nil {
			v.Href = hashURL(m.Hash())
		}
	case report.CellColor:
		v.Color = c.Color()
		if g := c.Glyph(); g != nil {
			v.Glyph = g.ID
		}
	}
	return v
}

// hashURL marks a Mode hash as a trusted fragment link. Without it the
// escaper reads the ":" in filter timestamps as a URL scheme and blanks the
// link.
func hashURL(hash string) template.URL {
	return template.URL("#" + hash)
}
