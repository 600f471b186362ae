package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8 * 1024

	// Upper bound for one resolution, remote call included.
	resolveTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing happens at the reverse proxy for now.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active widget clients. Each client is bound to its
// own conversation, created when the socket opens and discarded with it.
type Hub struct {
	// Registered clients keyed by widget session ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	chatService *usecase.ChatService

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(chatService *usecase.ChatService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		chatService: chatService,
		logger:      logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.sessionID]; ok {
				delete(h.clients, client.sessionID)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))
		}
	}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Widget session ID for this client
	sessionID string

	// Conversation bound to this connection
	conversation *entities.Conversation

	// Validates incoming frames before they reach the chat service
	validator *MessageValidator

	logger *zap.Logger
}

// HandleWebSocketWithAuth handles websocket requests with a pre-authenticated
// widget session ID.
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, sessionID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	conversation, err := hub.chatService.StartConversation(ctx)
	if err != nil {
		logger.Error("Failed to start conversation for widget session",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		conn.Close()
		return err
	}

	client := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 64),
		sessionID:    sessionID,
		conversation: conversation,
		validator:    NewMessageValidator(),
		logger:       logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	client.enqueue(CreateSessionStartMessage(conversation.ID))

	return nil
}

// readPump pumps messages from the websocket connection to the chat service.
// Messages are processed one at a time, so a client's submissions are
// serialized by construction: the next utterance is not read until the
// previous resolution has completed.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Received unexpected message type", zap.Int("type", messageType))
			continue
		}

		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage validates and dispatches one incoming frame
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected invalid message",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		c.enqueue(CreateErrorMessage("invalid_message", "Invalid message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *ChatMessage:
		c.handleChatMessage(msg)
	case *PingMessage:
		c.enqueue(CreatePongMessage(msg.Data))
	}
}

// handleChatMessage resolves one utterance and sends the reply back. The
// typing frame goes out first so the widget can show its processing indicator
// while the remote call is in flight.
func (c *Client) handleChatMessage(msg *ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	c.enqueue(CreateTypingMessage(c.conversation.ID))

	started := time.Now()
	reply, err := c.hub.chatService.Submit(ctx, c.conversation.ID, msg.Text)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyMessage):
			c.enqueue(CreateErrorMessage("empty_message", "Message text cannot be empty", ""))
		case errors.Is(err, usecase.ErrResolutionInFlight):
			c.enqueue(CreateErrorMessage("resolution_in_flight", "A previous message is still being answered", ""))
		default:
			c.logger.Error("Failed to resolve message",
				zap.String("sessionID", c.sessionID),
				zap.String("conversationID", c.conversation.ID),
				zap.Error(err))
			c.enqueue(CreateErrorMessage("resolution_failed", "Failed to resolve message", ""))
		}
		return
	}

	c.enqueue(CreateChatResponseMessage(c.conversation.ID, string(reply.Sender), reply.Text, time.Since(started)))
}

// enqueue marshals and queues an outbound message, dropping the connection if
// the send buffer is full.
func (c *Client) enqueue(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}

	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Send buffer full, dropping client",
			zap.String("sessionID", c.sessionID))
		c.hub.unregister <- c
	}
}
