package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
)

// ErrConversationNotFound is returned when a conversation ID is unknown.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository manages conversation storage. Conversations are
// session-scoped: implementations hold them in memory only and discard them
// when the process ends.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entities.Conversation) error
	GetByID(ctx context.Context, id string) (*entities.Conversation, error)
	Update(ctx context.Context, conversation *entities.Conversation) error
	Delete(ctx context.Context, id string) error

	// DeleteIdleBefore removes conversations whose last activity predates the
	// cutoff and returns how many were removed.
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// PreferenceRepository persists the visitor-facing theme flag. This is the
// only state that survives a restart.
type PreferenceRepository interface {
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}
