package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

// ConversationRepository is an in-memory implementation of
// ConversationRepository. Conversations live only for the lifetime of the
// process; there is deliberately no durable backend behind it.
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*entities.Conversation
}

// Ensure ConversationRepository implements the repository interface
var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new in-memory conversation repository
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[string]*entities.Conversation),
	}
}

// Create implements ConversationRepository
func (m *ConversationRepository) Create(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}

	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}

	if err := conversation.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conversations[conversation.ID]; exists {
		return errors.New("conversation with this ID already exists")
	}

	m.conversations[conversation.ID] = copyConversation(conversation)
	return nil
}

// GetByID implements ConversationRepository
func (m *ConversationRepository) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	if id == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	conversation, exists := m.conversations[id]
	if !exists {
		return nil, repositories.ErrConversationNotFound
	}

	// Return a copy to prevent external modifications
	return copyConversation(conversation), nil
}

// Update implements ConversationRepository
func (m *ConversationRepository) Update(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}

	if err := conversation.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.conversations[conversation.ID]
	if !exists {
		return repositories.ErrConversationNotFound
	}

	// Turns are append-only; an update may never shrink the log.
	if len(conversation.Turns) < len(existing.Turns) {
		return errors.New("conversation update would drop turns")
	}

	m.conversations[conversation.ID] = copyConversation(conversation)
	return nil
}

// Delete implements ConversationRepository
func (m *ConversationRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("conversation ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conversations[id]; !exists {
		return repositories.ErrConversationNotFound
	}

	delete(m.conversations, id)
	return nil
}

// DeleteIdleBefore implements ConversationRepository
func (m *ConversationRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, conversation := range m.conversations {
		if conversation.LastActiveAt.Before(cutoff) {
			delete(m.conversations, id)
			removed++
		}
	}

	return removed, nil
}

func copyConversation(conversation *entities.Conversation) *entities.Conversation {
	conversationCopy := *conversation
	conversationCopy.Turns = make([]entities.ChatTurn, len(conversation.Turns))
	copy(conversationCopy.Turns, conversation.Turns)
	if conversation.LastTurnAt != nil {
		lastTurnAt := *conversation.LastTurnAt
		conversationCopy.LastTurnAt = &lastTurnAt
	}
	return &conversationCopy
}
