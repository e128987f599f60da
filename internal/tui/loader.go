package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/verigen/internal/model"
)

// ErrCancelled is returned by RunLoader when the user pressed ctrl+c.
var ErrCancelled = errors.New("cancelled")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type generateDoneMsg struct {
	result model.Result
	err    error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	run     func(ctx context.Context) (model.Result, error)
	ctx     context.Context
	cancel  context.CancelFunc
	frame   int
	started time.Time
	result  model.Result
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doGenerate(), m.tick())
}

func (m loaderModel) doGenerate() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		result, err := run(ctx)
		return generateDoneMsg{result: result, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generateDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
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
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	elapsed := time.Since(m.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s (%s)\n", spinner, m.label, elapsed)
}

// RunLoader shows a spinner while run executes. It renders inline (no alt
// screen). ctrl+c cancels the context passed to run.
func RunLoader(ctx context.Context, label string, run func(ctx context.Context) (model.Result, error)) (model.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.Result{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
