package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

var (
	pst  = time.FixedZone("PST", -8*3600)
	base = time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
)

func at(d time.Duration) time.Time { return base.Add(d) }

func delta(ver int, user string, ts time.Time, recID, party, lat, long string) analyze.Delta {
	return analyze.Delta{
		Version:   ver,
		User:      user,
		App:       "canvass",
		Timestamp: ts,
		Value: analyze.Contents{
			"RecId":   {recID},
			"Party":   {party},
			"Support": {""},
			"XLat":    {lat},
			"XLong":   {long},
		},
	}
}

// fixtureData: bob works two sessions on Jan 5 and one on Jan 6 (UTC and
// PST agree on the day at these hours); amy works one session on Jan 5.
func fixtureData() *Data {
	deltas := []analyze.Delta{
		delta(1, "bob@x.com", at(0), "r1", "D", "47.60", "-122.30"),
		delta(2, "bob@x.com", at(5*time.Minute), "r2", "R", "47.61", "-122.31"),
		delta(3, "bob@x.com", at(60*time.Minute), "r3", "D", "47.62", "-122.32"),
		delta(4, "bob@x.com", at(24*time.Hour), "r4", "I", "47.63", "-122.33"),
		delta(5, "amy@x.com", at(10*time.Minute), "r5", "D", "47.70", "-122.40"),
		delta(6, "bob@x.com", at(24*time.Hour+12*time.Minute), "r6", "D", "47.64", "-122.34"),
		delta(45, "amy@x.com", at(20*time.Minute), "r7", "", "", ""),
	}
	households := analyze.HouseholdIndex{"r1": "h1", "r2": "h1", "r3": "h2", "r5": "h3"}
	return NewData(analyze.NewChangelist(deltas), households, pst, 15*time.Minute)
}

func render(m Mode, data *Data) (*Context, error) {
	ctx := NewContext(data, nil)
	err := m.Render(ctx)
	return ctx, err
}

// dump flattens a rendered page to text so two renders can be compared.
func dump(ctx *Context) string {
	var b strings.Builder
	var walk func(e *Element)
	walk = func(e *Element) {
		for _, blk := range e.Blocks {
			switch blk := blk.(type) {
			case Heading:
				fmt.Fprintf(&b, "H %s\n", blk.Text)
			case Text:
				fmt.Fprintf(&b, "T %s\n", blk.Text)
			case Pre:
				fmt.Fprintf(&b, "P %s\n", blk.Text)
			case Button:
				fmt.Fprintf(&b, "B %s\n", blk.Cell.String())
			case Panel:
				fmt.Fprintf(&b, "[%s\n", blk.Title)
				walk(blk.Body)
				b.WriteString("]\n")
			case *Table:
				b.WriteString(blk.CSV())
			}
		}
	}
	walk(ctx.Element)
	for _, g := range ctx.Map.Glyphs {
		fmt.Fprintf(&b, "G %s %s %d\n", g.User, g.Color, len(g.Path))
	}
	return b.String()
}

func findTable(e *Element, first string) *Table {
	for _, t := range e.Tables() {
		if len(t.Columns) > 0 && t.Columns[0] == first {
			return t
		}
	}
	return nil
}

func column(t *Table, name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
