// Package follow is a small Bubble Tea program that keeps the active view
// preference and its issue list on screen, redrawing whenever either
// stream publishes a change.
package follow

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/issueview/internal/issuelist"
	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/presentation"
	"github.com/zjrosen/issueview/internal/pubsub"
)

const logTailSize = 5

// Preferences is the part of the preference controller the model drives.
type Preferences interface {
	pubsub.Subscriber[preference.State]
	State() preference.State
	SetViewModeKanban() preference.State
	SetViewModeList() preference.State
	SaveAsNewDefault()
	ResetToDefault()
}

// List is the part of the issue list binding the model drives.
type List interface {
	pubsub.Subscriber[issuelist.View]
	View() issuelist.View
	Refresh()
}

// Config wires a Model.
type Config struct {
	Project     issues.ProjectSummary
	User        string
	Preferences Preferences
	List        List
	// Logs, when set, tails debug log entries under the list.
	Logs *log.LogListener
}

// Model renders one project scope.
type Model struct {
	cfg   Config
	prefs *pubsub.ContinuousListener[preference.State]
	list  *pubsub.ContinuousListener[issuelist.View]

	state   preference.State
	view    issuelist.View
	logTail []string
	width   int

	hint lipgloss.Style
}

// New subscribes to both streams. The subscriptions end when ctx is done.
func New(ctx context.Context, cfg Config) Model {
	return Model{
		cfg:   cfg,
		prefs: pubsub.NewContinuousListener[preference.State](ctx, cfg.Preferences),
		list:  pubsub.NewContinuousListener[issuelist.View](ctx, cfg.List),
		state: cfg.Preferences.State(),
		view:  cfg.List.View(),
		hint:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Init starts listening on every stream.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.prefs.Listen(), m.list.Listen()}
	if m.cfg.Logs != nil {
		cmds = append(cmds, m.cfg.Logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles stream events and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pubsub.Event[preference.State]:
		m.state = msg.Payload
		return m, m.prefs.Listen()

	case pubsub.Event[issuelist.View]:
		m.view = msg.Payload
		return m, m.list.Listen()

	case log.LogEvent:
		m.logTail = append(m.logTail, strings.TrimRight(msg.Payload, "\n"))
		if len(m.logTail) > logTailSize {
			m.logTail = m.logTail[len(m.logTail)-logTailSize:]
		}
		return m, m.cfg.Logs.Listen()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "k":
			m.state = m.cfg.Preferences.SetViewModeKanban()
		case "l":
			m.state = m.cfg.Preferences.SetViewModeList()
		case "s":
			m.cfg.Preferences.SaveAsNewDefault()
		case "d":
			m.cfg.Preferences.ResetToDefault()
		case "r":
			m.cfg.List.Refresh()
		}
		return m, nil
	}
	return m, nil
}

// View draws the current preference, the issue list and the log tail.
func (m Model) View() string {
	var b strings.Builder
	dto := presentation.FromView(m.cfg.Project, m.cfg.User, m.state, m.view)
	_ = presentation.NewFormatter(&b, presentation.FormatText).FormatShow(dto)

	if len(m.logTail) > 0 {
		b.WriteString("\n")
		for _, line := range m.logTail {
			b.WriteString(m.hint.Render(truncate(line, m.width)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.hint.Render("k kanban  l list  s save default  d reset  r refresh  q quit"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width {
		r = r[:width]
	}
	return string(r)
}
