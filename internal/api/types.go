package api

import (
	"time"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
)

// WidgetAuthRequest represents the request payload for widget authentication
type WidgetAuthRequest struct {
	SiteKey string `json:"site_key" validate:"required"`
}

// WidgetAuthResponse represents the response payload for widget authentication
type WidgetAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
}

// ConversationResponse represents a conversation and its turns
type ConversationResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Turns     []TurnResponse `json:"turns"`
}

// TurnResponse represents a single chat turn
type TurnResponse struct {
	Sender    entities.Sender `json:"sender"`
	Text      string          `json:"text"`
	Timestamp time.Time       `json:"timestamp"`
}

// PostMessageRequest represents a submitted user message
type PostMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// PostMessageResponse carries the bot reply for a submitted message
type PostMessageResponse struct {
	ConversationID string       `json:"conversation_id"`
	Reply          TurnResponse `json:"reply"`
}

// ThemeResponse represents the stored theme preference
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// ThemeUpdateRequest represents a theme preference change
type ThemeUpdateRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func turnResponse(turn entities.ChatTurn) TurnResponse {
	return TurnResponse{
		Sender:    turn.Sender,
		Text:      turn.Text,
		Timestamp: turn.Timestamp,
	}
}

func conversationResponse(conversation *entities.Conversation) ConversationResponse {
	turns := make([]TurnResponse, 0, len(conversation.Turns))
	for _, turn := range conversation.Turns {
		turns = append(turns, turnResponse(turn))
	}
	return ConversationResponse{
		ID:        conversation.ID,
		CreatedAt: conversation.CreatedAt,
		Turns:     turns,
	}
}
