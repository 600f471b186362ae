package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
	"github.com/sudevbasti/portfolio-assistant/internal/auth"
	"github.com/sudevbasti/portfolio-assistant/internal/websocket"
	"github.com/sudevbasti/portfolio-assistant/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	chatService *usecase.ChatService,
	preferences repositories.PreferenceRepository,
	hub *websocket.Hub,
	siteKey string,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "portfolio-assistant",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	// Widget session APIs
	v1.POST("/widget/auth", func(c echo.Context) error {
		return widgetAuth(c, siteKey, logger)
	})

	// Conversation APIs
	v1.POST("/conversations", func(c echo.Context) error {
		return createConversation(c, chatService, logger)
	})
	v1.GET("/conversations/:id", func(c echo.Context) error {
		return getConversation(c, chatService)
	})
	v1.POST("/conversations/:id/messages", func(c echo.Context) error {
		return postMessage(c, chatService, logger)
	})

	// Theme preference APIs
	v1.GET("/preferences/theme", func(c echo.Context) error {
		return getTheme(c, preferences, logger)
	})
	v1.PUT("/preferences/theme", func(c echo.Context) error {
		return setTheme(c, preferences, logger)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

// widgetAuth issues a short-lived session token so the browser widget can use
// the socket without ever holding a provider credential.
func widgetAuth(c echo.Context, siteKey string, logger *zap.Logger) error {
	var req WidgetAuthRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind widget auth request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if siteKey != "" && subtle.ConstantTimeCompare([]byte(req.SiteKey), []byte(siteKey)) != 1 {
		logger.Warn("Widget authentication failed")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid site key",
		})
	}

	sessionID := uuid.New().String()
	token, err := auth.GenerateWidgetToken(sessionID)
	if err != nil {
		logger.Error("Failed to generate widget token",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	logger.Info("Widget session authenticated", zap.String("session_id", sessionID))

	return c.JSON(http.StatusOK, WidgetAuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(1 * time.Hour),
		SessionID: sessionID,
	})
}

func createConversation(c echo.Context, chatService *usecase.ChatService, logger *zap.Logger) error {
	conversation, err := chatService.StartConversation(c.Request().Context())
	if err != nil {
		logger.Error("Failed to start conversation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "conversation_create_failed",
			Message: "Failed to start conversation",
		})
	}

	return c.JSON(http.StatusCreated, conversationResponse(conversation))
}

func getConversation(c echo.Context, chatService *usecase.ChatService) error {
	conversation, err := chatService.GetConversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "conversation_not_found",
				Message: "Unknown conversation ID",
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "conversation_fetch_failed",
			Message: "Failed to fetch conversation",
		})
	}

	return c.JSON(http.StatusOK, conversationResponse(conversation))
}

func postMessage(c echo.Context, chatService *usecase.ChatService, logger *zap.Logger) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	conversationID := c.Param("id")
	reply, err := chatService.Submit(c.Request().Context(), conversationID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyMessage):
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "empty_message",
				Message: "Message text cannot be empty",
			})
		case errors.Is(err, usecase.ErrResolutionInFlight):
			return c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "resolution_in_flight",
				Message: "A previous message is still being answered",
			})
		case errors.Is(err, repositories.ErrConversationNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "conversation_not_found",
				Message: "Unknown conversation ID",
			})
		default:
			logger.Error("Failed to resolve message",
				zap.String("conversation_id", conversationID),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "resolution_failed",
				Message: "Failed to resolve message",
			})
		}
	}

	return c.JSON(http.StatusCreated, PostMessageResponse{
		ConversationID: conversationID,
		Reply:          turnResponse(reply),
	})
}

func getTheme(c echo.Context, preferences repositories.PreferenceRepository, logger *zap.Logger) error {
	theme, err := preferences.Theme(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read theme preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "preference_read_failed",
			Message: "Failed to read theme preference",
		})
	}

	return c.JSON(http.StatusOK, ThemeResponse{Theme: theme})
}

func setTheme(c echo.Context, preferences repositories.PreferenceRepository, logger *zap.Logger) error {
	var req ThemeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if err := preferences.SetTheme(c.Request().Context(), req.Theme); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_theme",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, ThemeResponse{Theme: req.Theme})
}

// websocketWithAuth handles WebSocket connections with JWT authentication.
// Browsers cannot set headers on WebSocket upgrades, so the token is accepted
// from the Authorization header or the token query parameter.
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
	}

	if claims.Role != "widget" {
		logger.Warn("WebSocket connection rejected: invalid role",
			zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Only widget tokens are allowed for WebSocket connections",
		})
	}

	if claims.SessionID == "" {
		logger.Error("WebSocket connection rejected: missing session ID in token")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "Session ID not found in token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("session_id", claims.SessionID))

	return websocket.HandleWebSocketWithAuth(hub, c, claims.SessionID, logger)
}
