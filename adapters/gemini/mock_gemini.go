package gemini

import (
	"context"
	"fmt"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

// MockResponder is a placeholder remote responder used when no API key is
// configured, so the service stays runnable in development.
type MockResponder struct{}

// NewMockResponder creates a new mock responder
func NewMockResponder() repositories.Responder {
	return &MockResponder{}
}

// Reply implements repositories.Responder
func (m *MockResponder) Reply(ctx context.Context, utterance string, history []entities.ChatTurn) (string, error) {
	if len(history) == 0 {
		return "Hello! I'm Sudev's portfolio assistant. Ask me about his projects, skills, education, or experience.", nil
	}
	return fmt.Sprintf("Thanks for asking about '%s'. In development mode I can only echo; configure GEMINI_API_KEY for real answers.", utterance), nil
}
