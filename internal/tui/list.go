// Package tui renders the photo list in the terminal and drives the scheduler
// from what is on screen.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tendant/simple-photolist/internal/photo"
	"github.com/tendant/simple-photolist/internal/scheduler"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#7C3AED")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	statusPending     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	statusFetched     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	statusTransformed = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	statusFailed      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
)

const (
	chromeLines   = 3
	tickInterval  = 250 * time.Millisecond
	scrollSettles = 300 * time.Millisecond
)

type tickMsg time.Time

// Model is the bubbletea model for the photo list.
type Model struct {
	sched  *scheduler.Scheduler
	logger *slog.Logger

	spinner    spinner.Model
	cursor     int
	offset     int
	rows       int
	scrolling  bool
	lastScroll time.Time
	message    string
	now        func() time.Time
}

func NewModel(sched *scheduler.Scheduler, logger *slog.Logger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		sched:   sched,
		logger:  logger,
		spinner: sp,
		rows:    10,
		now:     time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadVisible(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Visible returns the ids of the rows currently on screen.
func (m *Model) Visible() []int {
	end := m.offset + m.rows
	if end > m.sched.Len() {
		end = m.sched.Len()
	}
	ids := make([]int, 0, end-m.offset)
	for id := m.offset; id < end; id++ {
		ids = append(ids, id)
	}
	return ids
}

func (m *Model) isVisible(id int) bool {
	return id >= m.offset && id < m.offset+m.rows
}

func (m *Model) loadVisible() tea.Cmd {
	if err := m.sched.EvaluateVisible(m.Visible()); err != nil {
		m.logger.Warn("evaluate visible rows", "err", err)
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.rows = msg.Height - chromeLines
		if m.rows < 1 {
			m.rows = 1
		}
		m.clamp()
		return m, m.loadVisible()

	case ItemChangedMsg:
		// A changed row is re-rendered and, if still on screen, advanced.
		if m.isVisible(msg.ID) && !m.scrolling {
			if err := m.sched.Evaluate(msg.ID); err != nil {
				m.logger.Warn("evaluate changed item", "item", msg.ID, "err", err)
			}
		}
		return m, nil

	case runMsg:
		msg.fn()
		return m, nil

	case tickMsg:
		if m.scrolling && m.now().Sub(m.lastScroll) >= scrollSettles {
			m.scrolling = false
			m.sched.Resume()
		}
		if !m.scrolling {
			m.loadVisible()
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.sched.CancelAll()
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.rows)
		case "pgdown", " ":
			m.move(m.rows)
		case "home", "g":
			m.move(-m.cursor)
		case "end", "G":
			m.move(m.sched.Len())
		case "r":
			m.resetSelected()
		}
	}
	return m, nil
}

// move scrolls the cursor. Dispatch is suspended until scrolling settles.
func (m *Model) move(delta int) {
	if m.sched.Len() == 0 {
		return
	}
	m.cursor += delta
	m.clamp()
	if !m.scrolling {
		m.scrolling = true
		m.sched.Suspend()
	}
	m.lastScroll = m.now()
}

func (m *Model) clamp() {
	n := m.sched.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.rows {
		m.offset = m.cursor - m.rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) resetSelected() {
	rec := m.sched.Record(m.cursor)
	if rec == nil || rec.State() != photo.StateFailed {
		return
	}
	if err := m.sched.Reset(m.cursor); err != nil {
		m.message = err.Error()
		return
	}
	m.message = fmt.Sprintf("retrying %s", rec.Name)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Classic Photos (%d)", m.sched.Len())))
	b.WriteString("\n")

	for _, id := range m.Visible() {
		line := m.renderRow(m.sched.Record(id).Snapshot())
		if id == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	help := "↑/↓ scroll • r retry failed • q quit"
	if m.message != "" {
		help = m.message + " • " + help
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m *Model) renderRow(s photo.Snapshot) string {
	switch s.State {
	case photo.StateTransformed:
		a := s.Artifact
		return fmt.Sprintf("%s %s  %s", statusTransformed.Render("●"), s.Name,
			statusTransformed.Render(fmt.Sprintf("%dx%d %s", a.Width, a.Height, a.Filter)))
	case photo.StateFailed:
		return fmt.Sprintf("%s %s", statusFailed.Render("✗"), statusFailed.Render("Failed to load"))
	case photo.StateFetched:
		return fmt.Sprintf("%s %s  %s", m.spinner.View(), s.Name, statusFetched.Render("filtering"))
	default:
		return fmt.Sprintf("%s %s  %s", m.spinner.View(), s.Name, statusPending.Render("downloading"))
	}
}

// Run starts the list UI and blocks until the user quits.
func Run(model *Model, relay *Relay) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	relay.Attach(p)
	_, err := p.Run()
	return err
}
