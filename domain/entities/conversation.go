package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a turn.
type Sender string

const (
	SenderUser Sender = "User"
	SenderBot  Sender = "Bot"
)

// ChatTurn is a single message in a conversation. Turns are immutable once
// appended; ordering is insertion order and is significant.
type ChatTurn struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
}

// Conversation holds the session's chat turns in display order. It is the
// single source of truth for both rendering and prompt building; the
// serialized transcript is rebuilt from the turn log on every call so it can
// never drift from what the user has seen.
type Conversation struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	LastTurnAt   *time.Time `json:"last_turn_at,omitempty"`
	Turns        []ChatTurn `json:"turns"`
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastActiveAt: now,
		Turns:        make([]ChatTurn, 0),
	}
}

// AppendTurn adds a turn to the end of the log. Turns are never removed or
// reordered within a session.
func (c *Conversation) AppendTurn(sender Sender, text string) ChatTurn {
	now := time.Now()
	turn := ChatTurn{
		Timestamp: now,
		Sender:    sender,
		Text:      text,
	}

	c.Turns = append(c.Turns, turn)
	c.LastTurnAt = &now
	c.LastActiveAt = now
	return turn
}

// History returns a copy of the turn log in insertion order.
func (c *Conversation) History() []ChatTurn {
	history := make([]ChatTurn, len(c.Turns))
	copy(history, c.Turns)
	return history
}

// Transcript serializes the turn log as "Sender: text" lines joined by
// newline, e.g. "User: Hi\nBot: Hello". Used verbatim when building the
// outbound prompt.
func (c *Conversation) Transcript() string {
	var sb strings.Builder
	for i, turn := range c.Turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(turn.Sender))
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
	}
	return sb.String()
}

// Validate validates the conversation data
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return errors.New("conversation ID is required")
	}

	for _, turn := range c.Turns {
		if turn.Sender != SenderUser && turn.Sender != SenderBot {
			return errors.New("invalid turn sender")
		}
	}

	return nil
}
