package app

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/ui/chatpanel"
)

// TestApp_FullSession drives the model through a real bubbletea event loop
// instead of calling Update directly: render the welcome message, run one
// help turn, then quit with ctrl+c.
func TestApp_FullSession(t *testing.T) {
	m := createTestModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Welcome to the Registration System"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("help")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Registration Chatbot Help"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok, "final model should be an app Model")

	msgs := final.chat.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, chatpanel.RoleBot, msgs[0].Role)
	assert.Equal(t, chatpanel.RoleUser, msgs[1].Role)
	assert.Equal(t, "help", msgs[1].Content)
	assert.Equal(t, chatpanel.RoleBot, msgs[2].Role)
	assert.False(t, final.chat.Thinking())
	require.NoError(t, final.Close())
}

// TestApp_FullSession_UnknownInput covers the fallback reply path through
// the event loop, where the transcript keeps accepting turns afterwards.
func TestApp_FullSession_UnknownInput(t *testing.T) {
	m := createTestModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abracadabra")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("understand that"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok)
	assert.Equal(t, "abracadabra", final.chat.Messages()[1].Content)
	require.NoError(t, final.Close())
}
