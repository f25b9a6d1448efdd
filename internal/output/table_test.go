package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7},
		{"wide runes", "日本", 6, 6},
		{"bold", "\x1b[1mhello\x1b[0m", 8, 8},
		{"truecolor", "\x1b[38;2;100;181;246mx\x1b[0m", 4, 4},
		{"styled over width", "\x1b[31mred\x1b[0m", 2, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := lipgloss.Width(pad(tc.input, tc.width)); got != tc.want {
				t.Errorf("pad(%q, %d) width = %d, want %d", tc.input, tc.width, got, tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("User", "20240105")
	tbl.AddRow("bob@x.com", "12")
	tbl.AddRow("amy@x.com")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "─") {
		t.Error("expected separator line")
	}
	if !strings.HasPrefix(lines[2], "bob@x.com  12") {
		t.Errorf("row = %q", lines[2])
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d", tbl.Len())
	}
}

func TestTable_Truncate(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Contents")
	tbl.MaxCellWidth = 8
	tbl.AddRow("Party=D; Support=1")
	out := tbl.Render()
	if !strings.Contains(out, "Party=D…") {
		t.Errorf("expected truncated cell, got:\n%s", out)
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	if out := NewTable().Render(); out != "" {
		t.Errorf("expected empty output for empty table, got %q", out)
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	if strings.Contains(StyleHeader.Render("test"), "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	if Swatch("#1f77b4") != "#1f77b4" {
		t.Errorf("Swatch without color = %q", Swatch("#1f77b4"))
	}
	SetNoColor(false)
	if IsNoColor() {
		t.Error("IsNoColor should be false after re-enabling")
	}
}

func TestStepBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := StepBar(1, 2, 4); got != "██░░ 1/2" {
		t.Errorf("StepBar = %q", got)
	}
	if got := StepBar(5, 3, 3); got != "███ 3/3" {
		t.Errorf("StepBar overflow = %q", got)
	}
}
