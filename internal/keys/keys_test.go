package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestPreview_QuitKeys(t *testing.T) {
	require.Equal(t, []string{"q", "ctrl+c"}, Preview.Quit.Keys())
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, Preview.Quit))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, Preview.Quit))
}

func TestPreview_SwitchPane(t *testing.T) {
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyTab}, Preview.SwitchPane))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, Preview.SwitchPane))
}

func TestPreview_HelpText(t *testing.T) {
	for _, b := range Preview.ShortHelp() {
		require.NotEmpty(t, b.Help().Key)
		require.NotEmpty(t, b.Help().Desc)
	}
	require.Len(t, Preview.FullHelp(), 2)
}

func TestPreview_NoDuplicateKeys(t *testing.T) {
	seen := map[string]string{}
	for _, group := range Preview.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}
