// Package tui provides the opt-in live progress display shown on stderr
// while a load test runs. The final report always goes to stdout untouched.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/loadcli/internal/loadtest"
)

const tickInterval = 100 * time.Millisecond

var (
	styleTitle  = lipgloss.NewStyle().Bold(true)
	styleSubtle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleErrors = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type tickMsg time.Time

// Model polls the executor's live counters on a fixed tick and quits when
// the run signals completion.
type Model struct {
	exec *loadtest.Executor
	done <-chan struct{}
	bar  progress.Model
	snap loadtest.Snapshot
}

// NewModel creates a progress model for a running executor. The done channel
// is closed by the caller when Run returns.
func NewModel(exec *loadtest.Executor, done <-chan struct{}) Model {
	return Model{
		exec: exec,
		done: done,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		m.snap = m.exec.Snapshot()
		select {
		case <-m.done:
			return m, tea.Quit
		default:
		}
		return m, tick()
	case tea.KeyMsg:
		// The run is not cancellable mid-flight; ignore keys.
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Load test running"))
	b.WriteString("\n")

	done := m.snap.Completed + m.snap.Errored
	if m.snap.Total > 0 {
		percent := float64(done) / float64(m.snap.Total)
		if percent > 1 {
			percent = 1
		}
		b.WriteString(m.bar.ViewAs(percent))
		b.WriteString(fmt.Sprintf("\n%d/%d requests\n", done, m.snap.Total))
	} else {
		percent := 0.0
		if m.snap.Duration > 0 {
			percent = m.snap.Elapsed.Seconds() / m.snap.Duration.Seconds()
			if percent > 1 {
				percent = 1
			}
		}
		b.WriteString(m.bar.ViewAs(percent))
		b.WriteString(fmt.Sprintf("\n%d requests\n", done))
	}

	b.WriteString(fmt.Sprintf("Elapsed: %.1fs\n", m.snap.Elapsed.Seconds()))
	b.WriteString(fmt.Sprintf("Active workers: %d\n", m.snap.Active))
	if m.snap.Errored > 0 {
		b.WriteString(styleErrors.Render(fmt.Sprintf("Errors: %d", m.snap.Errored)))
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("Report follows on completion."))
	b.WriteString("\n")

	return b.String()
}

// Show runs the progress display until done is closed. It renders on stderr
// so piped stdout output stays clean.
func Show(exec *loadtest.Executor, done <-chan struct{}) error {
	p := tea.NewProgram(NewModel(exec, done), tea.WithOutput(os.Stderr))
	_, err := p.Run()
	return err
}
