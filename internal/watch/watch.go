package watch

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aweisser/plog/internal/engine"
	"github.com/aweisser/plog/internal/timelog"
)

// MsgTick is sent once per second by the ticker in main to refresh the
// elapsed time display.
type MsgTick struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	durationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Model is the live status view. It re-reads the timer state on every
// tick so changes made by other plog invocations show up within a
// second.
type Model struct {
	engine *engine.Engine
	report engine.Report
	err    error
}

func NewModel(eng *engine.Engine) *Model {
	m := &Model{engine: eng}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.report, m.err = m.engine.Status(true)
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("plog"))
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		sb.WriteString("\n")
	case len(m.report.Entries) == 0:
		sb.WriteString(inactiveStyle.Render("No timer started."))
		sb.WriteString("\n")
	default:
		for i, e := range m.report.Entries {
			sb.WriteString(m.entryView(i+1, e))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Total: %s", totalStyle.Render(timelog.FormatDuration(m.report.Total))))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Quit: q"))

	return boxStyle.Width(60).Render(sb.String())
}

func (m *Model) entryView(n int, e engine.Entry) string {
	start := e.Record.StartedAt.Format("2006-01-02 15:04:05")

	var end string
	if e.Running {
		end = runningStyle.Render("● running")
	} else {
		end = inactiveStyle.Render("stopped " + e.Record.StoppedAt.Format("15:04:05"))
	}

	return fmt.Sprintf("Timer %d  %s  %s  %s",
		n, start, durationStyle.Render(timelog.FormatDuration(e.Duration)), end)
}
