// Package chatpanel provides the conversational transcript and input
// component for the registration TUI.
package chatpanel

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"rollcall/internal/ui/markdown"
	"rollcall/internal/ui/styles"
)

// inputPaneHeight is the rendered height of the input box: one content
// line plus the top and bottom border.
const inputPaneHeight = 3

// SubmitMsg is emitted when the user submits non-empty input.
type SubmitMsg struct {
	Content string
}

// SpinnerTickMsg advances the thinking spinner frame.
type SpinnerTickMsg struct{}

// spinnerFrames defines the braille spinner animation sequence.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ChipZone pairs a rendered chip's zone ID with the command it submits.
// The app's mouse handler iterates these to resolve clicks.
type ChipZone struct {
	ZoneID  string
	Command string
}

// Model holds the chat panel state.
type Model struct {
	cfg          Config
	width        int
	height       int
	focused      bool
	thinking     bool
	spinnerFrame int

	messages []Message
	input    textinput.Model
	viewport viewport.Model
	ready    bool

	mdRenderer *markdown.Renderer

	// Clock is the time source for message timestamps. If nil, uses time.Now().
	Clock func() time.Time
}

// New creates a new chat panel model with the given configuration.
func New(cfg Config) Model {
	if cfg.BotLabel == "" {
		cfg.BotLabel = DefaultConfig().BotLabel
	}

	ti := textinput.New()
	ti.Placeholder = "Type a command, or 'help'..."
	ti.Prompt = "> "
	ti.PromptStyle = styles.PromptStyle
	ti.PlaceholderStyle = ti.PlaceholderStyle.Foreground(styles.TextPlaceholderColor)
	ti.Focus()

	return Model{
		cfg:      cfg,
		focused:  true,
		messages: make([]Message, 0),
		input:    ti,
	}
}

// Init implements tea.Model and starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Focused returns whether the input has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Focus gives the input focus.
func (m Model) Focus() Model {
	m.focused = true
	m.input.Focus()
	return m
}

// Blur removes focus from the input.
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	return m
}

// Thinking returns whether the bot is processing a turn.
func (m Model) Thinking() bool {
	return m.thinking
}

// Messages returns the transcript.
func (m Model) Messages() []Message {
	return m.messages
}

// InputValue returns the current input text.
func (m Model) InputValue() string {
	return m.input.Value()
}

// ChipZones returns the zone IDs and commands of every rendered chip.
func (m Model) ChipZones() []ChipZone {
	var zones []ChipZone
	for _, msg := range m.messages {
		for _, chip := range msg.Chips {
			zones = append(zones, ChipZone{
				ZoneID:  makeChipZoneID(msg.ID, chip),
				Command: chip,
			})
		}
	}
	return zones
}

// SetSize updates dimensions, initializes the viewport on first call, and
// rebuilds the markdown renderer when the wrap width changes.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	transcriptHeight := max(height-inputPaneHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(width, transcriptHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = transcriptHeight
	}

	// Input chrome: border (2) + padding (2) + prompt (2) + cursor (1)
	m.input.Width = max(width-7, 10)

	wrapWidth := m.wrapWidth()
	if m.mdRenderer == nil || m.mdRenderer.Width() != wrapWidth {
		if r, err := markdown.New(wrapWidth, m.cfg.MarkdownStyle); err == nil {
			m.mdRenderer = r
		}
	}

	m = m.refreshContent()
	return m
}

// wrapWidth is the text wrap width inside the transcript.
func (m Model) wrapWidth() int {
	return max(m.width-2, 10)
}

// AppendUser adds a user message to the transcript and scrolls to it.
func (m Model) AppendUser(content string) Model {
	m.messages = append(m.messages, NewUserMessage(content, m.now()))
	m = m.refreshContent()
	m.viewport.GotoBottom()
	return m
}

// AppendBot adds a bot message to the transcript and scrolls to it.
// Chips become clickable command buttons under the message.
func (m Model) AppendBot(content string, chips ...string) Model {
	m.messages = append(m.messages, NewBotMessage(content, m.now(), chips...))
	m = m.refreshContent()
	m.viewport.GotoBottom()
	return m
}

// SetThinking toggles the thinking indicator. Pair with ThinkingTick to
// animate the spinner while a turn is in flight.
func (m Model) SetThinking(thinking bool) Model {
	m.thinking = thinking
	m.spinnerFrame = 0
	m = m.refreshContent()
	if thinking {
		m.viewport.GotoBottom()
	}
	return m
}

// ThinkingTick returns the command that drives the spinner animation.
// Returns nil when the panel is not thinking.
func (m Model) ThinkingTick() tea.Cmd {
	if !m.thinking {
		return nil
	}
	return spinnerTick()
}

// spinnerTick returns a command that sends SpinnerTickMsg after 80ms.
func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// SetShowTimestamps toggles message timestamps and re-renders.
func (m Model) SetShowTimestamps(show bool) Model {
	m.cfg.ShowTimestamps = show
	return m.refreshContent()
}

// ShowTimestamps returns whether message timestamps are rendered.
func (m Model) ShowTimestamps() bool {
	return m.cfg.ShowTimestamps
}

// SetMarkdownStyle switches the glamour style ("dark" or "light") and
// re-renders the transcript with it.
func (m Model) SetMarkdownStyle(style string) Model {
	m.cfg.MarkdownStyle = style
	m.mdRenderer = nil
	if m.ready {
		return m.SetSize(m.width, m.height)
	}
	return m
}

// Update implements tea.Model and handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SpinnerTickMsg:
		if !m.thinking {
			return m, nil
		}
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		m = m.refreshContent()
		m.viewport.GotoBottom()
		return m, spinnerTick()

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEnter:
			content := strings.TrimSpace(m.input.Value())
			// Turns are strictly sequential: no new input while one is in flight
			if content == "" || m.thinking {
				return m, nil
			}
			m.input.Reset()
			return m, func() tea.Msg { return SubmitMsg{Content: content} }

		case tea.KeyEscape:
			m.input.Reset()
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
			return m, nil
		}

		// Ignore wheel events over the input area
		if m.height > 0 && msg.Y >= m.height-inputPaneHeight {
			return m, nil
		}

		if msg.Button == tea.MouseButtonWheelUp {
			m.viewport.ScrollUp(1)
		} else {
			m.viewport.ScrollDown(1)
		}
		return m, nil
	}

	// Forward everything else (cursor blink etc.) to the input
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshContent re-renders the transcript into the viewport. When the view
// was at the bottom before the refresh it stays pinned there.
func (m Model) refreshContent() Model {
	if !m.ready {
		return m
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
	return m
}

// now returns the current time, using Clock if set, otherwise time.Now().
func (m Model) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}
