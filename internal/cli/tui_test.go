package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/algotrace/pkg/engine/bst"
	"github.com/matzehuels/algotrace/pkg/playback"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func newTestPlayModel(t *testing.T) PlayModel {
	t.Helper()
	tree := bst.New()
	tree.Load(50, 30, 70)
	log := tree.Insert(60)
	if log.Len() < 3 {
		t.Fatalf("need at least 3 steps, got %d", log.Len())
	}
	doc := &trace.Document{Engine: "bst", Operation: "insert", Steps: log}
	return NewPlayModel(doc, playback.NewSession(log, time.Millisecond))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m PlayModel, msg tea.Msg) (PlayModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(PlayModel), cmd
}

func TestPlayModelNavigation(t *testing.T) {
	m := newTestPlayModel(t)
	if cmd := m.Init(); cmd != nil {
		t.Error("paused model should not schedule a tick")
	}

	m, _ = update(m, key("right"))
	if m.Session.Index() != 1 {
		t.Errorf("after right: index = %d", m.Session.Index())
	}
	m, _ = update(m, key("left"))
	if m.Session.Index() != 0 {
		t.Errorf("after left: index = %d", m.Session.Index())
	}
	m, _ = update(m, key("end"))
	if !m.Session.AtEnd() {
		t.Error("end should jump to the last step")
	}
	m, _ = update(m, key("home"))
	if !m.Session.AtStart() {
		t.Error("home should jump to the first step")
	}
}

func TestPlayModelTicks(t *testing.T) {
	m := newTestPlayModel(t)

	m, cmd := update(m, key(" "))
	if !m.Session.Playing() || cmd == nil {
		t.Fatal("space should start playing and schedule a tick")
	}
	gen := m.gen

	m, cmd = update(m, tickMsg{gen: gen})
	if m.Session.Index() != 1 || cmd == nil {
		t.Errorf("tick: index = %d, cmd nil = %v", m.Session.Index(), cmd == nil)
	}

	// Changing speed starts a new generation; the old tick is dropped.
	m, _ = update(m, key("+"))
	if m.Session.Speed() != 2 {
		t.Errorf("speed = %g, want 2", m.Session.Speed())
	}
	m, cmd = update(m, tickMsg{gen: gen})
	if m.Session.Index() != 1 || cmd != nil {
		t.Errorf("stale tick moved the session to %d", m.Session.Index())
	}

	m, _ = update(m, key(" "))
	if m.Session.Playing() {
		t.Error("space should pause")
	}
	m, _ = update(m, tickMsg{gen: m.gen})
	if m.Session.Index() != 1 {
		t.Error("paused session should ignore ticks")
	}
}

func TestPlayModelPlaysToEnd(t *testing.T) {
	m := newTestPlayModel(t)
	m.Session.Play()
	for i := 0; i < m.Session.Len()+2; i++ {
		m, _ = update(m, tickMsg{gen: m.gen})
	}
	if !m.Session.AtEnd() || m.Session.Playing() {
		t.Errorf("index = %d playing = %v, want paused at end", m.Session.Index(), m.Session.Playing())
	}
	if !strings.Contains(m.View(), "end of trace") {
		t.Error("view should mark the end of the trace")
	}
}

func TestPlayModelQuit(t *testing.T) {
	m := newTestPlayModel(t)
	_, cmd := update(m, key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlayModelView(t *testing.T) {
	m := newTestPlayModel(t)
	view := m.View()
	for _, want := range []string{"bst insert", "1/", "paused", "#0 "} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := NewPlayModel(&trace.Document{Engine: "expr"}, playback.NewSession(trace.Log{}, 0))
	if !strings.Contains(empty.View(), "(no steps)") {
		t.Errorf("empty view = %q", empty.View())
	}
}

func TestEnginesTable(t *testing.T) {
	out := enginesTable(nil)
	if !strings.Contains(out, "Engine") {
		t.Errorf("table header missing: %q", out)
	}
}
