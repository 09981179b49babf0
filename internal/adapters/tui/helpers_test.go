package tui_test

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/fake/internal/adapters/telemetry"
	"go.trai.ch/fake/internal/adapters/tui"
	"go.trai.ch/fake/internal/core/domain"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// testPlan is all <- {lib, docs}, lib <- util.o.
func testPlan() domain.Plan {
	g := domain.NewGraph()
	g.Declare(domain.NewTargetName("all"), domain.NewTargetNames([]string{"lib", "docs"}))
	g.Declare(domain.NewTargetName("lib"), domain.NewTargetNames([]string{"util.o"}))
	g.Declare(domain.NewTargetName("docs"), nil)
	g.Declare(domain.NewTargetName("util.o"), nil)
	return domain.NewPlan(g, domain.NewTargetNames([]string{"all"}))
}

// newTestModel returns a sized model with testPlan loaded and a frozen clock.
func newTestModel(t *testing.T) *tui.Model {
	t.Helper()

	m := tui.NewModel(io.Discard).WithDisableTick()
	m.Now = func() time.Time { return epoch.Add(2 * time.Second) }
	send(&m, tea.WindowSizeMsg{Width: 100, Height: 20})
	send(&m, telemetry.MsgInitPlan{Plan: testPlan()})
	return &m
}

func send(m *tui.Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func start(span, name string, at time.Time) telemetry.MsgTaskStart {
	return telemetry.MsgTaskStart{SpanID: span, Name: name, StartTime: at}
}
