// ABOUTME: Terminal spinner shown while a slow backend call runs
// ABOUTME: A bubbletea program around a bubbles spinner; plain call when not a TTY

package spinner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

type doneMsg struct{}

type model struct {
	spinner spinner.Model
	title   string
	cancel  context.CancelFunc
	done    bool
}

func newModel(title string, cancel context.CancelFunc) model {
	return model{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		title:   title,
		cancel:  cancel,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + titleStyle.Render(m.title) + "\n"
}

// Enabled reports whether w is a terminal a spinner can draw on.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run calls fn while showing title next to a spinner on w. When w is not a
// terminal fn is called directly. Ctrl+C cancels the context passed to fn.
func Run[T any](ctx context.Context, w io.Writer, title string, fn func(context.Context) (T, error)) (T, error) {
	if !Enabled(w) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, cancel), tea.WithOutput(w), tea.WithContext(ctx))

	var (
		result T
		err    error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err = fn(ctx)
		p.Send(doneMsg{})
	}()

	if _, runErr := p.Run(); runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		slog.Debug("Spinner stopped", "error", runErr)
	}
	<-finished
	return result, err
}
