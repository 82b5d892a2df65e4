// Package prompt reads login secrets from the terminal with a small
// bubbletea program.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"feedvault/internal/ui/theme"
)

var ErrCancelled = errors.New("prompt cancelled")

type keyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Submit, k.Cancel} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

type model struct {
	title     string
	input     textinput.Model
	help      help.Model
	done      bool
	cancelled bool
}

func newModel(title, placeholder string, masked bool) model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return model{title: title, input: ti, help: help.New()}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Submit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.done || m.cancelled {
		return ""
	}
	body := theme.Title.Render(m.title) + "\n" + m.input.View() + "\n" + m.help.View(keys)
	return theme.Prompt.Render(body) + "\n"
}

// Terminal implements the credential prompter on a bubbletea program.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal reads from in and draws on out. Nil values leave bubbletea's
// stdin/stdout defaults in place.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) Password(ctx context.Context, login string) (string, error) {
	return t.run(ctx, newModel("Password for "+login, "password", true))
}

func (t *Terminal) MFACode(ctx context.Context, login string) (string, error) {
	value, err := t.run(ctx, newModel("Verification code for "+login, "123456", false))
	return strings.TrimSpace(value), err
}

func (t *Terminal) run(ctx context.Context, m model) (string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}
	result, ok := final.(model)
	if !ok || result.cancelled || !result.done {
		return "", ErrCancelled
	}
	return result.input.Value(), nil
}
