package output

import (
	"os"

	"golang.org/x/term"
)

// FallbackWidth is used when the output is not a terminal.
const FallbackWidth = 100

// TerminalWidth reports the column count of f, or FallbackWidth when f is
// not a terminal.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return FallbackWidth
	}
	return w
}

// CellWidthFor picks a table cell limit for a page width. Narrow terminals
// still get at least 12 columns per cell.
func CellWidthFor(width int) int {
	if width <= 0 {
		return 0
	}
	return max(width/3, 12)
}
