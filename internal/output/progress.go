package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepBar renders load progress as a bar with a step counter.
// Example: "██████░░░ 2/3"
func StepBar(done, total, width int) string {
	if width <= 0 {
		width = 20
	}
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := StyleWarning
	if done >= total {
		style = StyleSuccess
	}
	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%d/%d", min(done, total), total)))
}

// Section renders a styled section header over a rule as wide as the title.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", max(lipgloss.Width(title), 20)))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
