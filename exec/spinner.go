package exec

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// WithSpinner returns a Func that shows a spinner with message while the
// command runs. Without a terminal on stderr it behaves like Exec.
func (e *Executor) WithSpinner(message string) Func {
	return func(command string) (int, string, string) {
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			return e.Exec(command)
		}

		p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(os.Stderr), tea.WithInput(nil))
		done := make(chan struct{})
		go func() {
			// Spinner failures never affect the command
			_, _ = p.Run()
			close(done)
		}()

		rc, out, errText := e.Exec(command)
		p.Send(spinnerDoneMsg{failed: rc != 0})
		<-done

		return rc, out, errText
	}
}

// spinnerModel is the bubbletea model for the spinner
type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	failed  bool
}

type spinnerDoneMsg struct {
	failed bool
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.failed = msg.failed
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.failed {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}
