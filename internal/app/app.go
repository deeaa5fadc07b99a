// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"rollcall/internal/cachemanager"
	"rollcall/internal/chat"
	"rollcall/internal/config"
	"rollcall/internal/keys"
	"rollcall/internal/log"
	"rollcall/internal/pubsub"
	"rollcall/internal/registration"
	"rollcall/internal/ui/chatpanel"
	"rollcall/internal/ui/styles"
	"rollcall/internal/ui/toaster"
	"rollcall/internal/watcher"
)

// recordsKey is the cache key for the full record snapshot.
const recordsKey = "records:all"

// selfWriteWindow is how long after one of our own writes a watcher
// notification is treated as the echo of that write rather than an
// external edit. Must exceed the watcher debounce.
const selfWriteWindow = 3 * time.Second

// commandChips are the clickable suggestions attached to replies that
// enumerate the available commands.
var commandChips = []string{"register", "show registrations", "statistics", "help"}

// turnReplyMsg carries the dialogue's reply to one submitted input.
type turnReplyMsg struct {
	input   string
	wasIdle bool
	reply   chat.Reply
}

// recordCountMsg carries a refreshed record count for the status bar.
type recordCountMsg struct {
	count int
	err   error
}

// Model is the root application state.
type Model struct {
	chat     chatpanel.Model
	dialogue *chat.Dialogue
	store    *registration.Store

	cfg        config.Config
	configPath string
	keymap     keys.KeyMap

	// Global state
	width  int
	height int

	// Centralized toaster - owned by app, not the chat panel
	toaster toaster.Model

	// Record snapshot cache backing the status bar count
	recordCache cachemanager.CacheManager[string, []registration.Record]
	records     *cachemanager.ReadThroughCache[string, []registration.Record, struct{}]
	recordCount int
	lastWriteAt time.Time

	// File watcher for external data edits (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]
}

// New creates the application model wired to the given store and dialogue.
// configPath is the config file used to persist UI and theme toggles.
func New(
	store *registration.Store,
	dialogue *chat.Dialogue,
	recordCache cachemanager.CacheManager[string, []registration.Record],
	cfg config.Config,
	configPath string,
) Model {
	// Initialize file watcher if auto-refresh is enabled
	var (
		watcherHandle   *watcher.Watcher
		watcherCancel   context.CancelFunc
		watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]
	)

	if cfg.AutoRefresh && store.Path() != "" {
		w, err := watcher.New(watcher.DefaultConfig(store.Path()))
		if err == nil {
			// Subscribe before Start so the first notification is not missed
			watcherCtx, cancel := context.WithCancel(context.Background())
			listener := pubsub.NewContinuousListener(watcherCtx, w.Broker())
			if err := w.Start(); err == nil {
				watcherHandle = w
				watcherCancel = cancel
				watcherListener = listener
			} else {
				// Cleanup on start failure
				cancel()
				_ = w.Stop()
			}
		}
		// Silently ignore watcher init errors - app works fine without auto-refresh
	}

	panel := chatpanel.New(chatpanel.Config{
		BotLabel:       "Rollcall",
		ShowTimestamps: cfg.UI.ShowTimestamps,
		MarkdownStyle:  cfg.UI.MarkdownStyle,
	})
	panel = panel.AppendBot(chat.WelcomeText(), commandChips...)

	records := cachemanager.NewReadThroughCache(
		recordCache,
		func(ctx context.Context, _ struct{}) ([]registration.Record, error) {
			return store.List(ctx)
		},
		false,
	)

	return Model{
		chat:            panel,
		dialogue:        dialogue,
		store:           store,
		cfg:             cfg,
		configPath:      configPath,
		keymap:          keys.DefaultKeyMap(),
		recordCache:     recordCache,
		records:         records,
		recordCount:     -1,
		watcherHandle:   watcherHandle,
		watcherCancel:   watcherCancel,
		watcherListener: watcherListener,
	}
}

// Init implements tea.Model. Starts the input blink, loads the record
// count, and arms the watcher listener when auto-refresh is on.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.chat.Init(),
		m.refreshRecordCount(),
	}

	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat = m.chat.SetSize(msg.Width, m.chatHeight())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keymap.ToggleTimestamps):
			return m.toggleTimestamps()

		case key.Matches(msg, m.keymap.ToggleTheme):
			return m.toggleTheme()

		case key.Matches(msg, m.keymap.ToggleStatusBar):
			return m.toggleStatusBar()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			return m.handleClick(msg)
		}

	case chatpanel.SubmitMsg:
		return m.submitInput(msg.Content)

	case turnReplyMsg:
		return m.handleReply(msg)

	case recordCountMsg:
		if msg.err != nil {
			log.Warn(log.CatApp, "Failed to load record count", "error", msg.err)
			return m, nil
		}
		m.recordCount = msg.count
		return m, nil

	case pubsub.Event[watcher.WatcherEvent]:
		return m.handleWatcherEvent(msg)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Hide()
		return m, nil
	}

	// Delegate everything else to the chat panel
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// submitInput records the user's input in the transcript and runs the
// dialogue turn asynchronously with the thinking indicator on.
func (m Model) submitInput(input string) (tea.Model, tea.Cmd) {
	wasIdle := m.dialogue.State() == chat.StateIdle

	m.chat = m.chat.AppendUser(input)
	m.chat = m.chat.SetThinking(true)

	return m, tea.Batch(m.chat.ThinkingTick(), m.turnCmd(input, wasIdle))
}

// turnCmd runs one dialogue turn off the update loop. Turns are strictly
// sequential; the chat panel blocks new submissions while one is in flight.
func (m Model) turnCmd(input string, wasIdle bool) tea.Cmd {
	dialogue := m.dialogue
	return func() tea.Msg {
		reply := dialogue.Turn(context.Background(), input)
		return turnReplyMsg{input: input, wasIdle: wasIdle, reply: reply}
	}
}

// handleReply appends the bot reply and reacts to terminal outcomes:
// completed registrations flush the record cache and toast, cancellations
// toast.
func (m Model) handleReply(msg turnReplyMsg) (tea.Model, tea.Cmd) {
	m.chat = m.chat.SetThinking(false)
	m.chat = m.chat.AppendBot(msg.reply.Text, chipsFor(msg.input, msg.wasIdle)...)

	var cmds []tea.Cmd
	switch {
	case msg.reply.Completed:
		m.lastWriteAt = time.Now()
		if err := m.recordCache.Flush(context.Background()); err != nil {
			log.Warn(log.CatCache, "Failed to flush record cache after registration", "error", err)
		}
		m.toaster = m.toaster.Show("Registered "+msg.reply.Record.Name, toaster.StyleSuccess)
		cmds = append(cmds, toaster.ScheduleDismiss(3*time.Second), m.refreshRecordCount())

	case msg.reply.Cancelled:
		m.toaster = m.toaster.Show("Registration cancelled", toaster.StyleInfo)
		cmds = append(cmds, toaster.ScheduleDismiss(3*time.Second))
	}

	return m, tea.Batch(cmds...)
}

// handleWatcherEvent reacts to data file changes: flush the record cache
// and refresh the count. The watcher cannot tell our own append from an
// external edit, so the toast is suppressed right after a local write.
func (m Model) handleWatcherEvent(msg pubsub.Event[watcher.WatcherEvent]) (tea.Model, tea.Cmd) {
	switch msg.Payload.Type {
	case watcher.DataChanged:
		if err := m.recordCache.Flush(context.Background()); err != nil {
			log.Warn(log.CatCache, "Failed to flush record cache on data change", "error", err)
		}
		log.Debug(log.CatWatcher, "Data file changed, refreshing record count")

		cmds := []tea.Cmd{m.refreshRecordCount(), m.listenWatcher()}
		if time.Since(m.lastWriteAt) > selfWriteWindow {
			m.toaster = m.toaster.Show("Data file changed on disk", toaster.StyleInfo)
			cmds = append(cmds, toaster.ScheduleDismiss(3*time.Second))
		}
		return m, tea.Batch(cmds...)

	case watcher.WatcherError:
		log.Warn(log.CatWatcher, "Watcher error received", "error", msg.Payload.Error)
		return m, m.listenWatcher()
	}

	// Continue listening for unknown event types
	return m, m.listenWatcher()
}

// listenWatcher re-arms the watcher subscription, or nothing when
// auto-refresh is off.
func (m Model) listenWatcher() tea.Cmd {
	if m.watcherListener == nil {
		return nil
	}
	return m.watcherListener.Listen()
}

// handleClick resolves left-click releases against the chat panel's chip
// zones and submits the clicked command as if it had been typed.
func (m Model) handleClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.chat.Thinking() {
		return m, nil
	}

	for _, cz := range m.chat.ChipZones() {
		if z := zone.Get(cz.ZoneID); z != nil && z.InBounds(msg) {
			return m.submitInput(cz.Command)
		}
	}
	return m, nil
}

// toggleTimestamps flips message timestamps and persists the UI section.
func (m Model) toggleTimestamps() (tea.Model, tea.Cmd) {
	m.cfg.UI.ShowTimestamps = !m.cfg.UI.ShowTimestamps
	m.chat = m.chat.SetShowTimestamps(m.cfg.UI.ShowTimestamps)

	return m, m.saveUI()
}

// toggleTheme forces the opposite of the current background mode, restyles
// the palette, switches markdown rendering to match, and persists both
// sections.
func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	next := "dark"
	if lipgloss.HasDarkBackground() {
		next = "light"
	}

	m.cfg.Theme.Mode = next
	if err := styles.ApplyTheme(styles.ThemeConfig(m.cfg.Theme)); err != nil {
		log.Warn(log.CatConfig, "Failed to apply theme", "mode", next, "error", err)
		return m, nil
	}

	m.cfg.UI.MarkdownStyle = next
	m.chat = m.chat.SetMarkdownStyle(next)

	saveTheme := func() tea.Msg {
		if err := config.SaveTheme(m.configPath, m.cfg.Theme); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to save theme config", err)
		}
		return nil
	}
	return m, tea.Batch(saveTheme, m.saveUI())
}

// toggleStatusBar shows or hides the status bar and persists the UI
// section. The chat panel is resized since available height changed.
func (m Model) toggleStatusBar() (tea.Model, tea.Cmd) {
	m.cfg.UI.ShowStatusBar = !m.cfg.UI.ShowStatusBar
	m.chat = m.chat.SetSize(m.width, m.chatHeight())

	return m, m.saveUI()
}

// saveUI persists the UI config section off the update loop.
func (m Model) saveUI() tea.Cmd {
	configPath := m.configPath
	ui := m.cfg.UI
	return func() tea.Msg {
		if err := config.SaveUI(configPath, ui); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to save UI config", err)
		}
		return nil
	}
}

// refreshRecordCount loads the record snapshot through the cache and
// reports its size.
func (m Model) refreshRecordCount() tea.Cmd {
	records := m.records
	return func() tea.Msg {
		recs, err := records.Get(context.Background(), recordsKey, struct{}{}, cachemanager.DefaultExpiration)
		if err != nil {
			return recordCountMsg{err: err}
		}
		return recordCountMsg{count: len(recs)}
	}
}

// chatHeight is the height available to the chat panel after the status
// bar takes its row.
func (m Model) chatHeight() int {
	if m.cfg.UI.ShowStatusBar {
		return max(m.height-1, 1)
	}
	return m.height
}

// chipsFor attaches command chips to replies that enumerate the available
// commands: help, and the unrecognized-input pointer. Both only occur for
// turns that started from idle.
func chipsFor(input string, wasIdle bool) []string {
	if !wasIdle {
		return nil
	}
	cmd, _ := chat.ParseCommand(input)
	if cmd == chat.CommandHelp || cmd == chat.CommandUnknown {
		return commandChips
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	view := m.chat.View()
	if m.cfg.UI.ShowStatusBar {
		view += "\n" + m.renderStatusBar()
	}

	// Resolve click zones before the toaster splices lines over them
	view = zone.Scan(view)

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	return view
}

// renderStatusBar renders one line: dialogue hint on the left, record
// count and key hints on the right.
func (m Model) renderStatusBar() string {
	left := m.stateHint()

	parts := make([]string, 0, 3)
	if m.recordCount >= 0 {
		parts = append(parts, fmt.Sprintf("%d registered", m.recordCount))
	}
	for _, b := range m.keymap.ShortHelp() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	right := strings.Join(parts, " • ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// stateHint describes what the dialogue expects next.
func (m Model) stateHint() string {
	switch m.dialogue.State() {
	case chat.StateAwaitingName:
		return "Registering: waiting for name"
	case chat.StateAwaitingEmail:
		return "Registering: waiting for email"
	case chat.StateAwaitingDOB:
		return "Registering: waiting for date of birth"
	case chat.StateAwaitingConfirmation:
		return "Registering: reply 'confirm' to save"
	default:
		return "Type 'help' for commands"
	}
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	// Cancel watcher subscription context (stops listener)
	if m.watcherCancel != nil {
		m.watcherCancel()
	}

	// Close watcher if we own it
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}

	return nil
}
