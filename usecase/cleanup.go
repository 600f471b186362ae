package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

const (
	// How long a conversation may sit without a message before it is reaped.
	conversationIdleTTL = 2 * time.Hour

	cleanupInterval     = 30 * time.Minute
	initialCleanupDelay = 1 * time.Minute
)

// ConversationCleanupService periodically removes idle conversations so the
// in-memory store does not grow without bound. A reaped conversation simply
// disappears; the widget starts a fresh one on its next connection.
type ConversationCleanupService struct {
	conversations repositories.ConversationRepository
	logger        *zap.Logger
	stopChan      chan struct{}
}

// NewConversationCleanupService creates a new cleanup service
func NewConversationCleanupService(conversations repositories.ConversationRepository, logger *zap.Logger) *ConversationCleanupService {
	return &ConversationCleanupService{
		conversations: conversations,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *ConversationCleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Conversation cleanup service started")
}

// Stop gracefully stops the cleanup service
func (s *ConversationCleanupService) Stop() {
	close(s.stopChan)
	s.logger.Info("Conversation cleanup service stopped")
}

func (s *ConversationCleanupService) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	// Run the first pass shortly after startup.
	initialTimer := time.NewTimer(initialCleanupDelay)
	defer initialTimer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-initialTimer.C:
			s.runCleanup()
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *ConversationCleanupService) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.conversations.DeleteIdleBefore(ctx, time.Now().Add(-conversationIdleTTL))
	if err != nil {
		s.logger.Error("Failed to clean up idle conversations", zap.Error(err))
		return
	}

	if removed > 0 {
		s.logger.Info("Removed idle conversations", zap.Int("count", removed))
	}
}
