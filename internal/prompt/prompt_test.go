package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompterSequentialPrompts(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("2\r\n  x3\n"), &out)
	ctx := context.Background()

	a, ok, err := p.Prompt(ctx, "a = ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", a)

	b, ok, err := p.Prompt(ctx, "b = ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "  x3", b)

	assert.Equal(t, "a = b = ", out.String())
}

func TestLinePrompterLastLineWithoutNewline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("7"), &bytes.Buffer{})

	text, ok, err := p.Prompt(context.Background(), "a = ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", text)
}

func TestLinePrompterDismissedAtEOF(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), &bytes.Buffer{})

	text, ok, err := p.Prompt(context.Background(), "a = ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestLinePrompterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewLinePrompter(strings.NewReader("1\n"), &bytes.Buffer{}).Prompt(ctx, "a = ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewModes(t *testing.T) {
	in := strings.NewReader("")
	out := &bytes.Buffer{}

	p, err := New(ModeLine, in, out)
	require.NoError(t, err)
	assert.IsType(t, &LinePrompter{}, p)

	p, err = New(ModeTUI, in, out)
	require.NoError(t, err)
	assert.IsType(t, &TUIPrompter{}, p)

	// A strings.Reader is never a terminal.
	p, err = New(ModeAuto, in, out)
	require.NoError(t, err)
	assert.IsType(t, &LinePrompter{}, p)

	_, err = New("gui", in, out)
	assert.Error(t, err)
}

func typeRunes(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInputModelSubmit(t *testing.T) {
	var m tea.Model = newInputModel("a = ")
	m = typeRunes(m, "42")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	final := m.(inputModel)
	assert.True(t, final.submitted)
	assert.Equal(t, "42", final.input.Value())
	assert.Empty(t, final.View())
}

func TestInputModelCancel(t *testing.T) {
	var m tea.Model = newInputModel("b = ")
	m = typeRunes(m, "9")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	final := m.(inputModel)
	assert.False(t, final.submitted)
	assert.True(t, final.done)
}

func TestInputModelView(t *testing.T) {
	m := newInputModel("a = ")
	assert.Contains(t, m.View(), "a = ")
	assert.Contains(t, m.View(), "enter submit")
}
