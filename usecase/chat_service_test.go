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

// blockingResponder holds every Reply call until released. It lets tests keep
// a resolution in flight deliberately.
type blockingResponder struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingResponder() *blockingResponder {
	return &blockingResponder{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingResponder) Reply(ctx context.Context, utterance string, history []entities.ChatTurn) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "slow answer", nil
}

func newTestChatService(t *testing.T, remote repositories.Responder) *ChatService {
	t.Helper()

	logger := zaptest.NewLogger(t)
	fallback := &stubResponder{text: "offline answer"}
	resolver := NewResponseResolver(remote, fallback, logger)
	return NewChatService(resolver, memory.NewConversationRepository(), logger)
}

func TestStartConversation(t *testing.T) {
	service := newTestChatService(t, &stubResponder{text: "ok"})

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	if conversation.ID == "" {
		t.Error("Expected conversation ID to be set")
	}

	got, err := service.GetConversation(context.Background(), conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if len(got.Turns) != 0 {
		t.Errorf("Expected empty conversation, got %d turns", len(got.Turns))
	}
}

func TestSubmitAppendsUserThenBot(t *testing.T) {
	service := newTestChatService(t, &stubResponder{text: "remote answer"})

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	botTurn, err := service.Submit(context.Background(), conversation.ID, "What skills?")
	if err != nil {
		t.Fatalf("Failed to submit message: %v", err)
	}

	if botTurn.Sender != entities.SenderBot {
		t.Errorf("Expected bot turn, got sender %s", botTurn.Sender)
	}

	if botTurn.Text != "remote answer" {
		t.Errorf("Expected bot text %q, got %q", "remote answer", botTurn.Text)
	}

	got, err := service.GetConversation(context.Background(), conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if len(got.Turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(got.Turns))
	}

	if got.Turns[0].Sender != entities.SenderUser || got.Turns[0].Text != "What skills?" {
		t.Errorf("Expected user turn first, got %+v", got.Turns[0])
	}

	if got.Turns[1].Sender != entities.SenderBot {
		t.Errorf("Expected bot turn second, got %+v", got.Turns[1])
	}
}

func TestSubmitRejectsEmptyMessage(t *testing.T) {
	service := newTestChatService(t, &stubResponder{text: "ok"})

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := service.Submit(context.Background(), conversation.ID, text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}

	got, err := service.GetConversation(context.Background(), conversation.ID)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}

	if len(got.Turns) != 0 {
		t.Errorf("Expected rejected messages to leave the log empty, got %d turns", len(got.Turns))
	}
}

func TestSubmitUnknownConversation(t *testing.T) {
	service := newTestChatService(t, &stubResponder{text: "ok"})

	_, err := service.Submit(context.Background(), "no-such-id", "hello")
	if !errors.Is(err, repositories.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestSubmitHistoryExcludesCurrentUtterance(t *testing.T) {
	remote := &stubResponder{text: "remote answer"}
	service := newTestChatService(t, remote)

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	if _, err := service.Submit(context.Background(), conversation.ID, "first"); err != nil {
		t.Fatalf("Failed to submit first message: %v", err)
	}

	if len(remote.lastHistory) != 0 {
		t.Errorf("Expected empty history on first message, got %d turns", len(remote.lastHistory))
	}

	if _, err := service.Submit(context.Background(), conversation.ID, "second"); err != nil {
		t.Fatalf("Failed to submit second message: %v", err)
	}

	if remote.lastUtterance != "second" {
		t.Errorf("Expected utterance %q, got %q", "second", remote.lastUtterance)
	}

	if len(remote.lastHistory) != 2 {
		t.Fatalf("Expected 2 prior turns in history, got %d", len(remote.lastHistory))
	}

	if remote.lastHistory[0].Text != "first" || remote.lastHistory[1].Text != "remote answer" {
		t.Errorf("Expected history to hold the first exchange, got %+v", remote.lastHistory)
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	remote := newBlockingResponder()
	service := newTestChatService(t, remote)

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := service.Submit(context.Background(), conversation.ID, "first")
		firstDone <- err
	}()

	select {
	case <-remote.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the first resolution to start")
	}

	if _, err := service.Submit(context.Background(), conversation.ID, "second"); !errors.Is(err, ErrResolutionInFlight) {
		t.Errorf("Expected ErrResolutionInFlight for concurrent submission, got %v", err)
	}

	close(remote.release)

	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("First submission failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the first submission to finish")
	}

	// The slot must be free again once the first resolution completes. The
	// release channel is closed, so this call no longer blocks.
	if _, err := service.Submit(context.Background(), conversation.ID, "third"); err != nil {
		t.Errorf("Expected submission after completion to succeed, got %v", err)
	}
}

func TestSubmitSingleFlightPerConversation(t *testing.T) {
	remote := newBlockingResponder()
	service := newTestChatService(t, remote)

	first, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}
	second, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := service.Submit(context.Background(), first.ID, "hello")
		firstDone <- err
	}()

	select {
	case <-remote.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the first resolution to start")
	}

	// A different conversation is not blocked by the first one's flight.
	secondDone := make(chan error, 1)
	go func() {
		_, err := service.Submit(context.Background(), second.ID, "hello")
		secondDone <- err
	}()

	select {
	case <-remote.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the second resolution to start")
	}

	close(remote.release)

	for i := 0; i < 2; i++ {
		select {
		case err := <-firstDone:
			if err != nil {
				t.Errorf("First submission failed: %v", err)
			}
			firstDone = nil
		case err := <-secondDone:
			if err != nil {
				t.Errorf("Second submission failed: %v", err)
			}
			secondDone = nil
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for submissions to finish")
		}
	}
}

func TestSubmitUsesFallbackOnRemoteFailure(t *testing.T) {
	remote := &stubResponder{err: &repositories.RemoteCallError{Kind: repositories.FailureNetwork, Detail: "down"}}
	service := newTestChatService(t, remote)

	conversation, err := service.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Failed to start conversation: %v", err)
	}

	botTurn, err := service.Submit(context.Background(), conversation.ID, "hello")
	if err != nil {
		t.Fatalf("Failed to submit message: %v", err)
	}

	if botTurn.Text != "offline answer" {
		t.Errorf("Expected fallback reply, got %q", botTurn.Text)
	}
}
