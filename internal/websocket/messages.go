package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeChatMessage  MessageType = "chat_message"
	MessageTypeChatResponse MessageType = "chat_response"
	MessageTypeSessionStart MessageType = "session_start"
	MessageTypeTyping       MessageType = "typing"
	MessageTypePing         MessageType = "ping"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
)

// maxUtteranceLength bounds a single submitted message.
const maxUtteranceLength = 2000

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type" validate:"required"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// ChatMessage represents an incoming user utterance from the widget
type ChatMessage struct {
	BaseMessage
	Text string `json:"text" validate:"required"`
}

// ChatResponseMessage carries the bot reply back to the widget
type ChatResponseMessage struct {
	BaseMessage
	ConversationID string `json:"conversation_id"`
	Sender         string `json:"sender"`
	Text           string `json:"text"`
	ProcessingTime int64  `json:"processing_time_ms,omitempty"`
}

// SessionStartMessage announces the conversation bound to this connection
type SessionStartMessage struct {
	BaseMessage
	ConversationID string `json:"conversation_id"`
}

// TypingMessage signals that a resolution is in flight
type TypingMessage struct {
	BaseMessage
	ConversationID string `json:"conversation_id"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	// First parse as base message to get type
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	// Validate specific message type
	switch base.Type {
	case MessageTypeChatMessage:
		var msg ChatMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid chat message: %w", err)
		}
		if err := v.validateChatMessage(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateChatMessage validates chat message fields
func (v *MessageValidator) validateChatMessage(msg *ChatMessage) error {
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(msg.Text) > maxUtteranceLength {
		return fmt.Errorf("text must be at most %d characters", maxUtteranceLength)
	}
	return nil
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}

// CreateSessionStartMessage announces the conversation for this connection
func CreateSessionStartMessage(conversationID string) *SessionStartMessage {
	return &SessionStartMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSessionStart,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		ConversationID: conversationID,
	}
}

// CreateTypingMessage signals the widget to show its processing indicator
func CreateTypingMessage(conversationID string) *TypingMessage {
	return &TypingMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeTyping,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		ConversationID: conversationID,
	}
}

// CreateChatResponseMessage carries a resolved bot reply
func CreateChatResponseMessage(conversationID, sender, text string, processingTime time.Duration) *ChatResponseMessage {
	return &ChatResponseMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeChatResponse,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		ProcessingTime: processingTime.Milliseconds(),
	}
}
