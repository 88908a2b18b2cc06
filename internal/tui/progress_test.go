package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/loadcli/internal/loadtest"
)

func TestModel_ViewShowsCounts(t *testing.T) {
	m := Model{
		snap: loadtest.Snapshot{
			Completed: 40,
			Errored:   2,
			Active:    5,
			Total:     100,
		},
		bar: NewModel(nil, nil).bar,
	}

	out := m.View()

	if !strings.Contains(out, "42/100 requests") {
		t.Errorf("view missing request progress:\n%s", out)
	}
	if !strings.Contains(out, "Active workers: 5") {
		t.Errorf("view missing active workers:\n%s", out)
	}
	if !strings.Contains(out, "Errors: 2") {
		t.Errorf("view missing error count:\n%s", out)
	}
}

func TestModel_ViewDurationMode(t *testing.T) {
	m := Model{
		snap: loadtest.Snapshot{
			Completed: 7,
			Total:     0,
		},
		bar: NewModel(nil, nil).bar,
	}

	out := m.View()

	if !strings.Contains(out, "7 requests") {
		t.Errorf("duration-mode view missing request count:\n%s", out)
	}
	if strings.Contains(out, "7/0") {
		t.Errorf("duration-mode view must not show a total:\n%s", out)
	}
}

func TestModel_QuitsWhenDone(t *testing.T) {
	done := make(chan struct{})
	close(done)

	m := NewModel(newIdleExecutor(t), done)

	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("expected a command from tick update")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg after done closes, got %T", msg)
	}
}

func newIdleExecutor(t *testing.T) *loadtest.Executor {
	t.Helper()
	exec, err := loadtest.NewExecutor(&loadtest.Options{
		URL:         "http://127.0.0.1:1",
		Concurrency: 1,
		Requests:    1,
		TimeoutSec:  1,
	}, nil)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return exec
}
