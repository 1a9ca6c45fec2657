package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/coverletter/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// ErrCancelled is returned when the user aborts with ctrl+c.
var ErrCancelled = errors.New("cancelled")

type writeDoneMsg struct {
	letter model.Letter
	err    error
}

type spinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

type loaderModel struct {
	label  string
	ctx    context.Context
	cancel context.CancelFunc
	write  func(ctx context.Context) (model.Letter, error)
	frame  int
	result model.Letter
	err    error
	done   bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doWrite(), spinnerTick())
}

func (m loaderModel) doWrite() tea.Cmd {
	ctx, write := m.ctx, m.write
	return func() tea.Msg {
		letter, err := write(ctx)
		return writeDoneMsg{letter: letter, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case writeDoneMsg:
		m.result = msg.letter
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spinnerTick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", spinnerStyle.Render(spinnerFrames[m.frame]), m.label)
}

// RunLoader shows an inline spinner on out while write runs. ctrl+c cancels
// the context passed to write and returns ErrCancelled.
func RunLoader(ctx context.Context, out io.Writer, label string, write func(ctx context.Context) (model.Letter, error)) (model.Letter, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:  label,
		ctx:    ctx,
		cancel: cancel,
		write:  write,
	}
	p := tea.NewProgram(m, tea.WithOutput(out))
	result, err := p.Run()
	if err != nil {
		return model.Letter{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
