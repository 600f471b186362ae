package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sudevbasti/portfolio-assistant/adapters/memory"
	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

func TestCleanupRemovesIdleConversations(t *testing.T) {
	repo := memory.NewConversationRepository()
	ctx := context.Background()

	stale := entities.NewConversation()
	stale.LastActiveAt = time.Now().Add(-conversationIdleTTL - time.Minute)
	if err := repo.Create(ctx, stale); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	fresh := entities.NewConversation()
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	service := NewConversationCleanupService(repo, zaptest.NewLogger(t))
	service.runCleanup()

	if _, err := repo.GetByID(ctx, stale.ID); !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected idle conversation to be removed, got %v", err)
	}

	if _, err := repo.GetByID(ctx, fresh.ID); err != nil {
		t.Errorf("Expected active conversation to survive, got %v", err)
	}
}

func TestCleanupStartStop(t *testing.T) {
	service := NewConversationCleanupService(memory.NewConversationRepository(), zaptest.NewLogger(t))

	service.Start()
	service.Stop()
}
