package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts a load.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg struct {
	snap Snapshot
	err  error
}

type loaderModel struct {
	name    string
	load    func(ctx context.Context) (Snapshot, error)
	timeout time.Duration
	spinner spinner.Model
	result  Snapshot
	err     error
	done    bool
}

func newLoader(name string, timeout time.Duration, load func(ctx context.Context) (Snapshot, error)) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{name: name, load: load, timeout: timeout, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.spinner.Tick)
}

func (m loaderModel) doLoad() tea.Cmd {
	load, timeout := m.load, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := load(ctx)
		return loadDoneMsg{snap: snap, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.result, m.err, m.done = msg.snap, msg.err, true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done, m.err = true, ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Fetching postings from %s...\n", m.spinner.View(), m.name)
}

// RunLoader shows a spinner while load runs. It renders inline (no alt screen).
func RunLoader(name string, timeout time.Duration, load func(ctx context.Context) (Snapshot, error)) (Snapshot, error) {
	p := tea.NewProgram(newLoader(name, timeout, load))
	result, err := p.Run()
	if err != nil {
		return Snapshot{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
