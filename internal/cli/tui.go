package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/algotrace/pkg/playback"
	"github.com/matzehuels/algotrace/pkg/render/text"
	"github.com/matzehuels/algotrace/pkg/trace"
)

var (
	playHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	playStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	playBarStyle    = lipgloss.NewStyle().Foreground(colorCyan)
)

const progressWidth = 30

// =============================================================================
// PlayModel - Interactive step playback
// =============================================================================

// tickMsg advances a playing session. Ticks carry the generation they were
// scheduled in; pausing or changing speed starts a new generation so that
// stale ticks are dropped.
type tickMsg struct{ gen int }

// PlayModel is the bubbletea model for stepping through a trace.
type PlayModel struct {
	Session *playback.Session
	Title   string

	gen int
}

// NewPlayModel creates a playback model over doc.
func NewPlayModel(doc *trace.Document, s *playback.Session) PlayModel {
	return PlayModel{
		Session: s,
		Title:   doc.Engine + " " + doc.Operation,
	}
}

func (m PlayModel) Init() tea.Cmd {
	if m.Session.Playing() {
		return m.tick()
	}
	return nil
}

func (m PlayModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.Session.Interval(), func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// restart invalidates pending ticks and schedules a new one if playing.
func (m PlayModel) restart() (PlayModel, tea.Cmd) {
	m.gen++
	if m.Session.Playing() {
		return m, m.tick()
	}
	return m, nil
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.Session
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space", "p":
			s.Toggle()
			return m.restart()
		case "right", "l", "n":
			s.Next()
		case "left", "h", "b":
			s.Prev()
		case "home", "g":
			s.First()
		case "end", "G":
			s.Last()
			s.Pause()
			return m.restart()
		case "+", "=":
			s.Faster()
			return m.restart()
		case "-", "_":
			s.Slower()
			return m.restart()
		}
	case tickMsg:
		if msg.gen != m.gen || !s.Playing() {
			return m, nil
		}
		s.Tick()
		if s.Playing() {
			return m, m.tick()
		}
	}
	return m, nil
}

func (m PlayModel) View() string {
	var b strings.Builder
	s := m.Session

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")

	step, ok := s.Current()
	if !ok {
		b.WriteString(StyleDim.Render("(no steps)"))
		b.WriteString("\n\n")
		b.WriteString(playHelpStyle.Render("q quit"))
		b.WriteString("\n")
		return b.String()
	}

	state := "paused"
	if s.Playing() {
		state = "playing"
	}
	b.WriteString(progressBar(s.Index(), s.Len()))
	b.WriteString(" ")
	b.WriteString(playStatusStyle.Render(fmt.Sprintf("%d/%d  %s  %gx", s.Index()+1, s.Len(), state, s.Speed())))
	b.WriteString("\n\n")

	b.WriteString(text.Step(step))
	b.WriteString("\n")
	if s.AtEnd() {
		b.WriteString(StyleHighlight.Render("end of trace"))
		b.WriteString("\n")
	}
	b.WriteString(playHelpStyle.Render("space play/pause  ←/→ step  home/end jump  +/- speed  q quit"))
	b.WriteString("\n")
	return b.String()
}

func progressBar(index, n int) string {
	if n <= 0 {
		return ""
	}
	filled := (index + 1) * progressWidth / n
	return playBarStyle.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", progressWidth-filled))
}
