package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Menu, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func typeText(m *Menu, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNavigateAndChoose(t *testing.T) {
	m := NewMenu("")
	send(m, "j", "down", "k")
	require.Equal(t, 1, m.selected)

	send(m, "up", "up")
	require.Equal(t, 0, m.selected)

	send(m, "down")
	cmd := send(m, "enter")
	require.NotNil(t, cmd)
	sel, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, ActionList, sel.Action)
	assert.Empty(t, m.View())
}

func TestHotkeys(t *testing.T) {
	for _, tc := range []struct {
		key  string
		want Action
	}{
		{"4", ActionCheck},
		{"5", ActionReport},
		{"6", ActionServe},
		{"7", ActionHelp},
		{"q", ActionQuit},
		{"esc", ActionQuit},
		{"ctrl+c", ActionQuit},
	} {
		t.Run(tc.key, func(t *testing.T) {
			m := NewMenu("")
			send(m, tc.key)
			sel, ok := m.Result()
			require.True(t, ok)
			assert.Equal(t, tc.want, sel.Action)
		})
	}
}

func TestAddForm(t *testing.T) {
	m := NewMenu("")
	send(m, "1")
	require.NotNil(t, m.form)
	_, ok := m.Result()
	require.False(t, ok)

	typeText(m, "Learn Go")
	send(m, "enter")
	typeText(m, "study 1 hour daily")
	send(m, "tab")
	typeText(m, "2026-12-31")
	send(m, "enter")
	require.True(t, m.form.onLast())
	send(m, "enter")

	sel, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, ActionAdd, sel.Action)
	assert.Equal(t, map[string]string{
		FieldTitle:       "Learn Go",
		FieldDescription: "study 1 hour daily",
		FieldTargetDate:  "2026-12-31",
		FieldCategory:    "",
	}, sel.Values)
}

func TestFormRequiresFields(t *testing.T) {
	m := NewMenu("")
	send(m, "3")
	send(m, "up") // wraps to the last field
	require.True(t, m.form.onLast())
	send(m, "enter")

	_, ok := m.Result()
	require.False(t, ok)
	assert.Equal(t, "flag id is required", m.form.err)
	assert.Contains(t, m.View(), "flag id is required")
}

func TestFormEscReturnsToMenu(t *testing.T) {
	m := NewMenu("")
	send(m, "3")
	require.NotNil(t, m.form)
	send(m, "esc")
	require.Nil(t, m.form)
	_, ok := m.Result()
	require.False(t, ok)
}

func TestFormTypingQDoesNotQuit(t *testing.T) {
	m := NewMenu("")
	send(m, "1")
	typeText(m, "quit smoking")
	_, ok := m.Result()
	require.False(t, ok)
	assert.Equal(t, "quit smoking", m.form.inputs[0].Value())
}

func TestViewShowsNoticeAndItems(t *testing.T) {
	m := NewMenu("flag added: 1a2b3c4d")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "flag added: 1a2b3c4d")
	for _, item := range Items() {
		assert.Contains(t, view, item.Label)
	}
}
