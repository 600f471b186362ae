package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

var (
	// ErrEmptyMessage is returned when a submitted utterance is empty or
	// whitespace-only. Such input never reaches the conversation log.
	ErrEmptyMessage = errors.New("message text cannot be empty")

	// ErrResolutionInFlight is returned when a message arrives for a
	// conversation whose previous resolution has not completed yet. Only one
	// resolution may be in flight per conversation.
	ErrResolutionInFlight = errors.New("a resolution is already in flight for this conversation")
)

// ChatService orchestrates conversations: it owns the turn log, enforces the
// single-flight rule, and drives the resolver for each submitted message.
type ChatService struct {
	resolver      *ResponseResolver
	conversations repositories.ConversationRepository
	logger        *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewChatService creates a new chat service
func NewChatService(resolver *ResponseResolver, conversations repositories.ConversationRepository, logger *zap.Logger) *ChatService {
	return &ChatService{
		resolver:      resolver,
		conversations: conversations,
		logger:        logger,
		inflight:      make(map[string]struct{}),
	}
}

// StartConversation creates an empty conversation.
func (s *ChatService) StartConversation(ctx context.Context) (*entities.Conversation, error) {
	conversation := entities.NewConversation()
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}

	s.logger.Info("Conversation started", zap.String("conversationID", conversation.ID))
	return conversation, nil
}

// GetConversation returns the conversation with the given ID.
func (s *ChatService) GetConversation(ctx context.Context, id string) (*entities.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

// Submit resolves one user message into one bot reply and appends both to the
// conversation in that order. A second submission for the same conversation
// while a resolution is still running is rejected with ErrResolutionInFlight,
// so replies can never race to append out of order.
func (s *ChatService) Submit(ctx context.Context, conversationID, text string) (entities.ChatTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.ChatTurn{}, ErrEmptyMessage
	}

	if err := s.acquire(conversationID); err != nil {
		return entities.ChatTurn{}, err
	}
	defer s.release(conversationID)

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return entities.ChatTurn{}, err
	}

	// The prompt history is the conversation before this message; the current
	// utterance travels separately in the payload.
	history := conversation.History()

	reply := s.resolver.Resolve(ctx, text, history)

	conversation.AppendTurn(entities.SenderUser, text)
	botTurn := conversation.AppendTurn(entities.SenderBot, reply)

	if err := s.conversations.Update(ctx, conversation); err != nil {
		return entities.ChatTurn{}, err
	}

	s.logger.Info("Message resolved",
		zap.String("conversationID", conversationID),
		zap.Int("turns", len(conversation.Turns)))

	return botTurn, nil
}

func (s *ChatService) acquire(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[conversationID]; busy {
		return ErrResolutionInFlight
	}
	s.inflight[conversationID] = struct{}{}
	return nil
}

func (s *ChatService) release(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, conversationID)
}
