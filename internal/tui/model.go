package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"imgopt/internal/processor"
)

type Model struct {
	events    <-chan processor.Event
	cancel    func()
	started   time.Time
	width     int
	total     int
	percent   int
	processed int
	errors    int
	notes     int
	cancelled bool
	quitting  bool
}

type doneMsg struct{}

type eventMsg processor.Event

// NewModel renders events until the channel is closed. cancel is invoked on
// ctrl+c and may be nil.
func NewModel(events <-chan processor.Event, total int, cancel func()) Model {
	return Model{events: events, total: total, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		switch msg.Kind {
		case processor.EventProgress:
			if msg.Percent > m.percent {
				m.percent = msg.Percent
			}
			return m, listenForEvents(m.events)
		case processor.EventLog:
			m.countLine(msg.Line)
			return m, tea.Sequence(tea.Println(styleLine(msg.Line)), listenForEvents(m.events))
		}
		return m, listenForEvents(m.events)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) countLine(line string) {
	switch {
	case strings.HasPrefix(line, successMarker):
		m.processed++
	case strings.HasPrefix(line, failureMarker):
		m.errors++
	case strings.HasPrefix(line, "Converting image"):
		m.notes++
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-16)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	bar := renderBar(barWidth, float64(m.percent)/100)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	status := dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed))
	if m.cancelled {
		status = warnStyle.Render("Cancelling after the current file...")
	}

	lines := []string{
		titleStyle.Render("imgopt"),
		labelStyle.Render(fmt.Sprintf("Files: %d", m.total)) +
			dimStyle.Render(fmt.Sprintf("  done:%d errors:%d flattened:%d", m.processed, m.errors, m.notes)),
		status,
		barStyle.Render(bar) + labelStyle.Render(fmt.Sprintf(" %3d%%", m.percent)),
	}

	return strings.Join(lines, "\n")
}

func listenForEvents(events <-chan processor.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(event)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

const (
	successMarker = "✅"
	failureMarker = "❌"
)

// styleLine colors a log line by its leading marker.
func styleLine(line string) string {
	switch {
	case strings.HasPrefix(line, successMarker):
		return successStyle.Render(line)
	case strings.HasPrefix(line, failureMarker):
		return errorStyle.Render(line)
	case strings.HasPrefix(strings.TrimLeft(line, "\n"), "🎉"):
		return titleStyle.Render(line)
	default:
		return dimStyle.Render(line)
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	barStyle     = lipgloss.NewStyle().Foreground(ColorAccent)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
)
