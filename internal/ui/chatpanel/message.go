package chatpanel

import (
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is a single entry in the transcript.
type Message struct {
	// ID is a unique identifier assigned at creation. Chip zone IDs are
	// derived from it, so clickable regions stay stable across re-renders.
	ID      string
	Role    string
	Content string
	Time    time.Time
	// Chips are command phrases rendered as clickable buttons under the
	// message. Only bot messages carry them.
	Chips []string
}

// NewUserMessage creates a user message stamped with the given time.
func NewUserMessage(content string, at time.Time) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: content,
		Time:    at,
	}
}

// NewBotMessage creates a bot message stamped with the given time.
func NewBotMessage(content string, at time.Time, chips ...string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    RoleBot,
		Content: content,
		Time:    at,
		Chips:   chips,
	}
}
