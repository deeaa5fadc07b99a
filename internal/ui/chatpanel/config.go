package chatpanel

// Config holds configuration for the chat panel.
type Config struct {
	// BotLabel is the display name for bot replies.
	BotLabel string

	// ShowTimestamps renders a HH:MM timestamp next to each message label.
	ShowTimestamps bool

	// MarkdownStyle selects the glamour style for bot replies,
	// "dark" or "light". Default is "dark".
	MarkdownStyle string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BotLabel:      "Rollcall",
		MarkdownStyle: "dark",
	}
}
