package status

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RefreshFunc produces a fresh rendering of the stack
type RefreshFunc func(ctx context.Context) (string, error)

type refreshedMsg struct {
	content string
	err     error
}

type tickMsg time.Time

type liveModel struct {
	ctx      context.Context
	refresh  RefreshFunc
	interval time.Duration

	spinner   spinner.Model
	content   string
	err       error
	updatedAt time.Time
	loading   bool
}

// Live runs a full-screen auto-refreshing stack view until the operator
// quits with q or ctrl+c.
func Live(ctx context.Context, refresh RefreshFunc, interval time.Duration) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := liveModel{
		ctx:      ctx,
		refresh:  refresh,
		interval: interval,
		spinner:  s,
		loading:  true,
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m liveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd())
}

func (m liveModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		content, err := m.refresh(m.ctx)
		return refreshedMsg{content: content, err: err}
	}
}

func (m liveModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.refreshCmd()
		}

	case refreshedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.content = msg.content
			m.updatedAt = time.Now()
		}
		return m, m.scheduleTick()

	case tickMsg:
		m.loading = true
		return m, m.refreshCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m liveModel) View() string {
	header := "  "
	if m.loading {
		header = m.spinner.View() + " "
	}
	header += "ghchain status"
	if !m.updatedAt.IsZero() {
		header += mutedStyle.Render(fmt.Sprintf(" (updated %s, q to quit, r to refresh)", m.updatedAt.Format("15:04:05")))
	}

	body := m.content
	if m.err != nil {
		body = errorStyle.Render(fmt.Sprintf("error refreshing status: %v", m.err))
	}
	if body == "" {
		body = mutedStyle.Render("loading...")
	}

	return header + "\n\n" + body
}
