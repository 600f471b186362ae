package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

func TestCreateAndGet(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	got, err := repo.GetByID(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if got.ID != conversation.ID {
		t.Errorf("Expected ID %s, got %s", conversation.ID, got.ID)
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	if err := repo.Create(ctx, conversation); err == nil {
		t.Error("Expected error for duplicate conversation ID")
	}
}

func TestGetNotFound(t *testing.T) {
	repo := NewConversationRepository()

	_, err := repo.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	conversation.AppendTurn(entities.SenderUser, "Hi")
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	got, err := repo.GetByID(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	got.Turns[0].Text = "mutated"

	fresh, err := repo.GetByID(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if fresh.Turns[0].Text != "Hi" {
		t.Error("Expected stored conversation to be isolated from returned copies")
	}
}

func TestUpdate(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	conversation.AppendTurn(entities.SenderUser, "Hi")
	conversation.AppendTurn(entities.SenderBot, "Hello")
	if err := repo.Update(ctx, conversation); err != nil {
		t.Fatalf("Failed to update conversation: %v", err)
	}

	got, err := repo.GetByID(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if len(got.Turns) != 2 {
		t.Errorf("Expected 2 turns after update, got %d", len(got.Turns))
	}
}

func TestUpdateRejectsDroppedTurns(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	conversation.AppendTurn(entities.SenderUser, "Hi")
	conversation.AppendTurn(entities.SenderBot, "Hello")
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	truncated, err := repo.GetByID(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	truncated.Turns = truncated.Turns[:1]

	if err := repo.Update(ctx, truncated); err == nil {
		t.Error("Expected error for update that drops turns")
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := NewConversationRepository()

	conversation := entities.NewConversation()
	if err := repo.Update(context.Background(), conversation); !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	conversation := entities.NewConversation()
	if err := repo.Create(ctx, conversation); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	if err := repo.Delete(ctx, conversation.ID); err != nil {
		t.Fatalf("Failed to delete conversation: %v", err)
	}

	if _, err := repo.GetByID(ctx, conversation.ID); !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, conversation.ID); !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound for double delete, got %v", err)
	}
}

func TestDeleteIdleBefore(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()

	stale := entities.NewConversation()
	stale.LastActiveAt = time.Now().Add(-2 * time.Hour)
	if err := repo.Create(ctx, stale); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	fresh := entities.NewConversation()
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	removed, err := repo.DeleteIdleBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete idle conversations: %v", err)
	}

	if removed != 1 {
		t.Errorf("Expected 1 removed conversation, got %d", removed)
	}

	if _, err := repo.GetByID(ctx, stale.ID); !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected stale conversation to be gone, got %v", err)
	}

	if _, err := repo.GetByID(ctx, fresh.ID); err != nil {
		t.Errorf("Expected fresh conversation to survive, got %v", err)
	}
}
