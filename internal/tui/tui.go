// Package tui is the interactive terminal browser. It drives a
// view.Controller through an in-memory location with back/forward history.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/deltalens/internal/output"
	"github.com/blackwell-systems/deltalens/internal/view"
)

const (
	headerHeight = 2
	footerHeight = 2
	maxCellWidth = 40
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(output.ColorPrimary)
	hashStyle  = lipgloss.NewStyle().Foreground(output.ColorMuted)
	errStyle   = lipgloss.NewStyle().Foreground(output.ColorError)
	helpStyle  = lipgloss.NewStyle().Foreground(output.ColorMuted)
)

type model struct {
	ctrl      *view.Controller
	port      *view.MemoryPort
	viewport  viewport.Model
	input     textinput.Model
	prompting bool
	selected  int // 1-based link index, 0 for none
	status    string
	ready     bool
	width     int
	height    int
}

func newModel(ctrl *view.Controller, port *view.MemoryPort) model {
	in := textinput.New()
	in.Prompt = ": "
	in.Placeholder = "hash or link number"
	in.CharLimit = 512

	m := model{ctrl: ctrl, port: port, input: in, viewport: viewport.New(80, 20)}
	ctrl.Start()
	port.Pump()
	return m
}

// Run opens the browser full-screen until the user quits.
func Run(ctrl *view.Controller, port *view.MemoryPort) error {
	_, err := tea.NewProgram(newModel(ctrl, port), tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) links() int {
	if snap := m.ctrl.Snapshot(); snap != nil {
		return len(snap.Root.Links())
	}
	return 0
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		m.input.Width = max(10, msg.Width-4)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if n := m.links(); n > 0 {
				m.selected = m.selected%n + 1
				m.refresh()
			}
			return m, nil
		case "shift+tab":
			if n := m.links(); n > 0 {
				m.selected--
				if m.selected < 1 {
					m.selected = n
				}
				m.refresh()
			}
			return m, nil
		case "enter":
			m.activate(m.selected)
			return m, nil
		case "b":
			if m.port.Back() {
				m.settle()
			}
			return m, nil
		case "f":
			if m.port.Forward() {
				m.settle()
			}
			return m, nil
		case ":":
			m.prompting = true
			m.input.SetValue("")
			cmd := m.input.Focus()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.input.Blur()
		m.submit(strings.TrimSpace(m.input.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit treats a number as a link index and anything else as a hash.
func (m *model) submit(v string) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		m.activate(n)
		return
	}
	m.port.Set(strings.TrimPrefix(v, "#"))
	m.settle()
}

func (m *model) activate(n int) {
	snap := m.ctrl.Snapshot()
	if snap == nil {
		return
	}
	links := snap.Root.Links()
	if n < 1 || n > len(links) {
		m.status = fmt.Sprintf("no link %d", n)
		m.refresh()
		return
	}
	m.ctrl.Activate(links[n-1])
	m.settle()
}

// settle delivers queued location changes, then redraws.
func (m *model) settle() {
	before := m.ctrl.Snapshot()
	m.port.Pump()
	if m.ctrl.Snapshot() != before {
		m.selected = 0
		m.viewport.GotoTop()
	}
	m.status = ""
	m.refresh()
}

func (m *model) refresh() {
	snap := m.ctrl.Snapshot()
	if snap == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(output.RenderPage(snap.Root, snap.Map, output.PageOptions{
		Links:        true,
		Selected:     m.selected,
		MaxCellWidth: maxCellWidth,
	}))
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	var sb strings.Builder
	if snap := m.ctrl.Snapshot(); snap != nil {
		sb.WriteString(titleStyle.Render(snap.Description))
		sb.WriteString("\n")
		sb.WriteString(hashStyle.Render("#" + snap.Hash))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.prompting:
		sb.WriteString(m.input.View())
	case m.ctrl.Err() != nil:
		sb.WriteString(errStyle.Render(m.ctrl.Err().Error()))
	case m.status != "":
		sb.WriteString(errStyle.Render(m.status))
	default:
		sb.WriteString(" ")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("tab select · enter open · b back · f forward · : go to · q quit"))
	return sb.String()
}
