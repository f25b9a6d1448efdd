package report

import (
	"fmt"
	"math"
	"strconv"
)

// CellKind tags what a table cell does when activated.
type CellKind int

const (
	// CellScalar is plain text with no action.
	CellScalar CellKind = iota
	// CellNavigate moves the view to another report.
	CellNavigate
	// CellColor highlights a map glyph without navigating.
	CellColor
)

// Cell is one table field: a scalar, or a value bound to an action.
// The zero Cell is a blank scalar.
type Cell struct {
	kind   CellKind
	value  any
	target func() Mode
	color  string
	glyph  *Glyph
}

// Scalar wraps a plain value.
func Scalar(v any) Cell {
	if c, ok := v.(Cell); ok {
		return c
	}
	return Cell{kind: CellScalar, value: v}
}

// Clickable wraps v with an action that produces the next report.
func Clickable(v any, target func() Mode) Cell {
	return Cell{kind: CellNavigate, value: v, target: target}
}

// ColorValue shows a color swatch that focuses glyph when activated.
func ColorValue(color string, glyph *Glyph) Cell {
	return Cell{kind: CellColor, value: color, color: color, glyph: glyph}
}

// Kind returns the cell's tag.
func (c Cell) Kind() CellKind { return c.kind }

// Value returns the wrapped value.
func (c Cell) Value() any { return c.value }

// Color returns the swatch color of a CellColor, or "".
func (c Cell) Color() string { return c.color }

// Glyph returns the map glyph a CellColor focuses, or nil.
func (c Cell) Glyph() *Glyph { return c.glyph }

// Interactive reports whether the cell carries an action.
func (c Cell) Interactive() bool {
	return c.kind != CellScalar
}

// Target returns the report a navigate cell leads to, or nil.
func (c Cell) Target() Mode {
	if c.kind != CellNavigate || c.target == nil {
		return nil
	}
	return c.target()
}

// Activate runs the cell's action. Navigate cells hand their target to next;
// color cells focus their glyph.
func (c Cell) Activate(next func(Mode)) {
	switch c.kind {
	case CellNavigate:
		if m := c.Target(); m != nil && next != nil {
			next(m)
		}
	case CellColor:
		if c.glyph != nil {
			c.glyph.SetFocus()
		}
	}
}

// Blank reports whether the cell renders empty. Only scalars can be blank:
// nil, "", zero numbers, NaN and false all count, so a real zero looks the
// same as missing data.
func (c Cell) Blank() bool {
	if c.kind != CellScalar {
		return false
	}
	switch v := c.value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0 || math.IsNaN(v)
	}
	return false
}

// String returns the display text. It never depends on whether the action
// has run.
func (c Cell) String() string {
	if c.kind == CellScalar && c.Blank() {
		return ""
	}
	return formatValue(c.value)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
