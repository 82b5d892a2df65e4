package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(m model, text string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(model)
}

func TestModelSubmitsTypedValue(t *testing.T) {
	t.Parallel()
	m := typeInto(newModel("Password for me", "password", true), "hunter2")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if !m.done || m.cancelled {
		t.Fatalf("enter should finish the prompt")
	}
	if cmd == nil {
		t.Fatalf("enter should quit the program")
	}
	if got := m.input.Value(); got != "hunter2" {
		t.Fatalf("expected typed value, got %q", got)
	}
	if m.View() != "" {
		t.Fatalf("finished prompt should render nothing")
	}
}

func TestModelMasksPassword(t *testing.T) {
	t.Parallel()
	m := typeInto(newModel("Password for me", "password", true), "hunter2")
	if strings.Contains(m.View(), "hunter2") {
		t.Fatalf("password must not be echoed:\n%s", m.View())
	}
	code := typeInto(newModel("Verification code", "123456", false), "987654")
	if !strings.Contains(code.View(), "987654") {
		t.Fatalf("mfa code should be visible:\n%s", code.View())
	}
}

func TestModelCancel(t *testing.T) {
	t.Parallel()
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		next, _ := newModel("Password", "", true).Update(msg)
		if m := next.(model); !m.cancelled || m.done {
			t.Fatalf("%s should cancel", msg.String())
		}
	}
}
