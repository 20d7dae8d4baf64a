package prompt

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// TUIPrompter shows a single-line text input.
type TUIPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTUIPrompter creates an interactive prompter on in/out.
func NewTUIPrompter(in io.Reader, out io.Writer) *TUIPrompter {
	return &TUIPrompter{in: in, out: out}
}

// Prompt implements Prompter.
func (p *TUIPrompter) Prompt(ctx context.Context, label string) (string, bool, error) {
	program := tea.NewProgram(newInputModel(label),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if err != nil {
		return "", false, fmt.Errorf("running prompt: %w", err)
	}

	m := final.(inputModel)
	if !m.submitted {
		return "", false, nil
	}
	return m.input.Value(), true, nil
}

type inputModel struct {
	input     textinput.Model
	submitted bool
	done      bool
}

func newInputModel(label string) inputModel {
	ti := textinput.New()
	ti.Prompt = labelStyle.Render(label)
	ti.Placeholder = "number"
	ti.Width = 32
	ti.Focus()
	return inputModel{input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	return m.input.View() + "\n" + helpStyle.Render("enter submit • esc cancel") + "\n"
}
