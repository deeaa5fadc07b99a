package app

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/cachemanager"
	"rollcall/internal/chat"
	"rollcall/internal/config"
	"rollcall/internal/pubsub"
	"rollcall/internal/registration"
	"rollcall/internal/ui/chatpanel"
	"rollcall/internal/ui/styles"
	"rollcall/internal/ui/toaster"
	"rollcall/internal/watcher"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// createTestModel builds a sized Model over a temp store with auto-refresh
// off, so no file watcher runs during unit tests.
func createTestModel(t *testing.T) Model {
	t.Helper()

	dir := t.TempDir()
	store, err := registration.New(filepath.Join(dir, "registrations.csv"))
	require.NoError(t, err)

	configPath := filepath.Join(dir, ".rollcall.yaml")
	require.NoError(t, config.WriteDefaultConfig(configPath))

	cfg := config.Defaults()
	cfg.AutoRefresh = false

	cache := cachemanager.NewInMemoryCacheManager[string, []registration.Record](
		"records", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)

	m := New(store, chat.NewDialogue(store), cache, cfg, configPath)
	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return newModel.(Model)
}

// runCmd executes a command tree and collects the messages it produces.
// Batches are flattened; nil messages are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drive submits one input and feeds the resulting dialogue reply back into
// the model, like the running program would. Commands produced by the
// reply itself (toast dismissal, count refresh) are not executed.
func drive(t *testing.T, m Model, input string) Model {
	t.Helper()

	newModel, cmd := m.Update(chatpanel.SubmitMsg{Content: input})
	m = newModel.(Model)

	for _, msg := range runCmd(cmd) {
		if reply, ok := msg.(turnReplyMsg); ok {
			newModel, _ = m.Update(reply)
			m = newModel.(Model)
		}
	}
	return m
}

func lastMessage(t *testing.T, m Model) chatpanel.Message {
	t.Helper()
	msgs := m.chat.Messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestApp_WelcomeShownOnStart(t *testing.T) {
	m := createTestModel(t)

	msgs := m.chat.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chatpanel.RoleBot, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Welcome to the Registration System")
	assert.Equal(t, commandChips, msgs[0].Chips)
}

func TestApp_WindowSizeMsg(t *testing.T) {
	m := createTestModel(t)

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	m = newModel.(Model)

	assert.Equal(t, 120, m.width, "expected width to be updated")
	assert.Equal(t, 50, m.height, "expected height to be updated")
}

func TestApp_ViewRendersWelcomeAndStatusBar(t *testing.T) {
	m := createTestModel(t)

	view := stripANSI(m.View())
	assert.Contains(t, view, "Welcome to the Registration System")
	assert.Contains(t, view, "Rollcall")
	assert.Contains(t, view, "Type 'help' for commands")
	assert.Contains(t, view, "enter send")
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := createTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd, "expected quit command")
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_TypingReachesInput(t *testing.T) {
	m := createTestModel(t)

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stats")})
	m = newModel.(Model)
	assert.Equal(t, "stats", m.chat.InputValue())

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = newModel.(Model)
	assert.Empty(t, m.chat.InputValue())
}

func TestApp_SubmitStartsTurn(t *testing.T) {
	m := createTestModel(t)

	newModel, cmd := m.Update(chatpanel.SubmitMsg{Content: "help"})
	m = newModel.(Model)

	require.NotNil(t, cmd)
	assert.True(t, m.chat.Thinking(), "turn should show the thinking indicator")
	assert.Equal(t, "help", lastMessage(t, m).Content)
	assert.Equal(t, chatpanel.RoleUser, lastMessage(t, m).Role)
}

func TestApp_HelpReplyCarriesChips(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "help")

	last := lastMessage(t, m)
	assert.False(t, m.chat.Thinking())
	assert.Equal(t, chatpanel.RoleBot, last.Role)
	assert.Contains(t, last.Content, "Registration Chatbot Help")
	assert.Equal(t, commandChips, last.Chips)
}

func TestApp_UnknownInputCarriesChips(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "make me a sandwich")

	last := lastMessage(t, m)
	assert.Contains(t, last.Content, "I didn't understand that")
	assert.Equal(t, commandChips, last.Chips)
}

func TestApp_ListReplyHasNoChips(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "show registrations")

	last := lastMessage(t, m)
	assert.Equal(t, chatpanel.RoleBot, last.Role)
	assert.Empty(t, last.Chips)
}

func TestApp_FieldInputGetsNoChips(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "register")
	// "help" is a valid name here, not a command
	m = drive(t, m, "help")

	assert.Equal(t, chat.StateAwaitingEmail, m.dialogue.State())
	assert.Empty(t, lastMessage(t, m).Chips)
}

func TestApp_RegistrationFlowCompletes(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "register")
	assert.Equal(t, chat.StateAwaitingName, m.dialogue.State())

	m = drive(t, m, "Alice Smith")
	m = drive(t, m, "alice@example.com")
	m = drive(t, m, "1990-05-15")
	m = drive(t, m, "confirm")

	assert.Equal(t, chat.StateIdle, m.dialogue.State())
	assert.True(t, m.toaster.Visible(), "completion should toast")
	assert.Contains(t, stripANSI(m.toaster.View()), "Registered Alice Smith")
	assert.False(t, m.lastWriteAt.IsZero(), "completion should record the write time")

	records, err := m.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice Smith", records[0].Name)
}

func TestApp_CancelledRegistrationToasts(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "register")
	m = drive(t, m, "Alice Smith")
	m = drive(t, m, "alice@example.com")
	m = drive(t, m, "1990-05-15")
	m = drive(t, m, "no thanks")

	assert.Equal(t, chat.StateIdle, m.dialogue.State())
	assert.True(t, m.toaster.Visible())
	assert.Contains(t, stripANSI(m.toaster.View()), "Registration cancelled")

	records, err := m.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records, "cancelled draft must not be persisted")
}

func TestApp_DuplicateEmailReturnsToEmailStep(t *testing.T) {
	m := createTestModel(t)
	_, err := m.store.Add(context.Background(), "Bob Jones", "alice@example.com", "1985-03-20")
	require.NoError(t, err)

	m = drive(t, m, "register")
	m = drive(t, m, "Alice Smith")
	m = drive(t, m, "alice@example.com")
	m = drive(t, m, "1990-05-15")
	m = drive(t, m, "confirm")

	assert.Equal(t, chat.StateAwaitingEmail, m.dialogue.State())
	assert.False(t, m.toaster.Visible(), "failed save must not toast success")

	records, err := m.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1, "duplicate must not write a second record")
}

func TestApp_StatusHintFollowsDialogue(t *testing.T) {
	m := createTestModel(t)

	m = drive(t, m, "register")
	assert.Contains(t, stripANSI(m.View()), "waiting for name")

	m = drive(t, m, "Alice Smith")
	assert.Contains(t, stripANSI(m.View()), "waiting for email")
}

func TestApp_RecordCountRefresh(t *testing.T) {
	m := createTestModel(t)
	_, err := m.store.Add(context.Background(), "Alice Smith", "alice@example.com", "1990-05-15")
	require.NoError(t, err)

	msg := m.refreshRecordCount()()
	count, ok := msg.(recordCountMsg)
	require.True(t, ok)
	require.NoError(t, count.err)
	assert.Equal(t, 1, count.count)

	newModel, _ := m.Update(count)
	m = newModel.(Model)
	assert.Equal(t, 1, m.recordCount)
	assert.Contains(t, stripANSI(m.View()), "1 registered")
}

func TestApp_RecordCountServedFromCache(t *testing.T) {
	m := createTestModel(t)

	// Prime the cache, then write behind its back
	runCmd(m.refreshRecordCount())
	_, err := m.store.Add(context.Background(), "Alice Smith", "alice@example.com", "1990-05-15")
	require.NoError(t, err)

	msg := m.refreshRecordCount()()
	count := msg.(recordCountMsg)
	assert.Equal(t, 0, count.count, "cached snapshot should mask the new write")

	// Flushing invalidates the snapshot
	require.NoError(t, m.recordCache.Flush(context.Background()))
	msg = m.refreshRecordCount()()
	count = msg.(recordCountMsg)
	assert.Equal(t, 1, count.count)
}

func TestApp_WatcherChangeFlushesAndToasts(t *testing.T) {
	m := createTestModel(t)
	runCmd(m.refreshRecordCount())
	_, ok := m.recordCache.Get(context.Background(), recordsKey)
	require.True(t, ok, "cache should be primed")

	event := pubsub.Event[watcher.WatcherEvent]{
		Type:    pubsub.ChangedEvent,
		Payload: watcher.WatcherEvent{Type: watcher.DataChanged},
	}
	newModel, cmd := m.Update(event)
	m = newModel.(Model)

	_, ok = m.recordCache.Get(context.Background(), recordsKey)
	assert.False(t, ok, "external change should flush the record cache")
	assert.True(t, m.toaster.Visible())
	assert.Contains(t, stripANSI(m.toaster.View()), "Data file changed on disk")
	assert.NotNil(t, cmd)
}

func TestApp_WatcherChangeAfterOwnWriteIsSilent(t *testing.T) {
	m := createTestModel(t)
	m.lastWriteAt = time.Now()
	runCmd(m.refreshRecordCount())

	event := pubsub.Event[watcher.WatcherEvent]{
		Type:    pubsub.ChangedEvent,
		Payload: watcher.WatcherEvent{Type: watcher.DataChanged},
	}
	newModel, _ := m.Update(event)
	m = newModel.(Model)

	_, ok := m.recordCache.Get(context.Background(), recordsKey)
	assert.False(t, ok, "cache flush happens regardless of toast suppression")
	assert.False(t, m.toaster.Visible(), "echo of our own write must not toast")
}

func TestApp_WatcherErrorKeepsListening(t *testing.T) {
	m := createTestModel(t)

	event := pubsub.Event[watcher.WatcherEvent]{
		Type:    pubsub.ErrorEvent,
		Payload: watcher.WatcherEvent{Type: watcher.WatcherError, Error: os.ErrPermission},
	}
	newModel, _ := m.Update(event)
	m = newModel.(Model)

	assert.False(t, m.toaster.Visible())
}

func TestApp_ToastDismiss(t *testing.T) {
	m := createTestModel(t)
	m.toaster = m.toaster.Show("Registered Alice Smith", toaster.StyleSuccess)

	newModel, _ := m.Update(toaster.DismissMsg{})
	m = newModel.(Model)

	assert.False(t, m.toaster.Visible())
}

func TestApp_ToggleTimestamps(t *testing.T) {
	m := createTestModel(t)
	require.False(t, m.cfg.UI.ShowTimestamps)

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = newModel.(Model)

	assert.True(t, m.cfg.UI.ShowTimestamps)
	assert.True(t, m.chat.ShowTimestamps())

	// The save command persists the ui section
	runCmd(cmd)
	data, err := os.ReadFile(m.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "show_timestamps: true")
}

func TestApp_ToggleStatusBar(t *testing.T) {
	m := createTestModel(t)
	require.True(t, m.cfg.UI.ShowStatusBar)
	require.Contains(t, stripANSI(m.View()), "enter send")

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = newModel.(Model)

	assert.False(t, m.cfg.UI.ShowStatusBar)
	assert.NotContains(t, stripANSI(m.View()), "enter send")

	runCmd(cmd)
	data, err := os.ReadFile(m.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "show_status_bar: false")
}

func TestApp_ToggleTheme(t *testing.T) {
	hadDark := lipgloss.HasDarkBackground()
	t.Cleanup(func() {
		mode := "light"
		if hadDark {
			mode = "dark"
		}
		require.NoError(t, styles.ApplyTheme(styles.ThemeConfig{Mode: mode}))
	})

	m := createTestModel(t)

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m = newModel.(Model)

	wantMode := "dark"
	if hadDark {
		wantMode = "light"
	}
	assert.Equal(t, wantMode, m.cfg.Theme.Mode)
	assert.Equal(t, wantMode, m.cfg.UI.MarkdownStyle)
	assert.Equal(t, hadDark, !lipgloss.HasDarkBackground(), "background mode should flip")

	runCmd(cmd)
	data, err := os.ReadFile(m.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: "+wantMode)
	assert.Contains(t, string(data), "markdown_style: "+wantMode)
}

func TestApp_ChipSubmitMatchesTypedInput(t *testing.T) {
	m := createTestModel(t)

	// Clicking a chip routes through the same submit path as typing
	newModel, cmd := m.submitInput("register")
	m = newModel.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "register", lastMessage(t, m).Content)
	assert.True(t, m.chat.Thinking())
}

func TestApp_ClickIgnoredWhileThinking(t *testing.T) {
	m := createTestModel(t)
	m.chat = m.chat.SetThinking(true)

	before := len(m.chat.Messages())
	click := tea.MouseMsg{
		Action: tea.MouseActionRelease,
		Button: tea.MouseButtonLeft,
		X:      1, Y: 1,
	}
	newModel, cmd := m.Update(click)
	m = newModel.(Model)

	assert.Nil(t, cmd)
	assert.Len(t, m.chat.Messages(), before)
}

func TestApp_ClickOutsideChipsDoesNothing(t *testing.T) {
	m := createTestModel(t)

	before := len(m.chat.Messages())
	click := tea.MouseMsg{
		Action: tea.MouseActionRelease,
		Button: tea.MouseButtonLeft,
		X:      -100, Y: -100,
	}
	newModel, cmd := m.Update(click)
	m = newModel.(Model)

	assert.Nil(t, cmd)
	assert.Len(t, m.chat.Messages(), before)
}

func TestApp_NoWatcherWhenAutoRefreshOff(t *testing.T) {
	m := createTestModel(t)

	assert.Nil(t, m.watcherHandle)
	assert.Nil(t, m.watcherListener)
	assert.NoError(t, m.Close())
}

func TestApp_WatcherStartsWhenAutoRefreshOn(t *testing.T) {
	dir := t.TempDir()
	store, err := registration.New(filepath.Join(dir, "registrations.csv"))
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.AutoRefresh = true

	cache := cachemanager.NewInMemoryCacheManager[string, []registration.Record](
		"records", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)

	m := New(store, chat.NewDialogue(store), cache, cfg, filepath.Join(dir, ".rollcall.yaml"))

	assert.NotNil(t, m.watcherHandle)
	assert.NotNil(t, m.watcherListener)
	assert.NotNil(t, m.Init())
	assert.NoError(t, m.Close())
}

func TestChipsFor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wasIdle bool
		want    []string
	}{
		{name: "help from idle", input: "help", wasIdle: true, want: commandChips},
		{name: "unknown from idle", input: "what can you do", wasIdle: true, want: commandChips},
		{name: "list from idle", input: "show registrations", wasIdle: true, want: nil},
		{name: "register from idle", input: "register", wasIdle: true, want: nil},
		{name: "help as field input", input: "help", wasIdle: false, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chipsFor(tt.input, tt.wasIdle))
		})
	}
}
