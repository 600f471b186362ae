package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/adapters/fallback"
	"github.com/sudevbasti/portfolio-assistant/adapters/gemini"
	"github.com/sudevbasti/portfolio-assistant/adapters/memory"
	"github.com/sudevbasti/portfolio-assistant/adapters/prefs"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
	"github.com/sudevbasti/portfolio-assistant/internal/api"
	"github.com/sudevbasti/portfolio-assistant/internal/websocket"
	"github.com/sudevbasti/portfolio-assistant/usecase"
)

func main() {
	// Load .env if present; real deployments use actual environment variables
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	var remote repositories.Responder
	geminiConfig := gemini.NewGeminiConfigFromEnv()
	if geminiConfig.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using mock responder")
		remote = gemini.NewMockResponder()
	} else {
		responder, err := gemini.NewGeminiResponder(geminiConfig, gemini.PersonaFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to create Gemini responder", zap.Error(err))
		}
		remote = responder
	}

	fallbackResponder := fallback.NewResponder()
	conversationRepo := memory.NewConversationRepository()
	preferenceStore := prefs.NewFilePreferenceStoreFromEnv(logger)

	// Initialize usecase services
	resolver := usecase.NewResponseResolver(remote, fallbackResponder, logger)
	chatService := usecase.NewChatService(resolver, conversationRepo, logger)

	// Reap idle conversations in the background
	cleanup := usecase.NewConversationCleanupService(conversationRepo, logger)
	cleanup.Start()
	defer cleanup.Stop()

	// Initialize WebSocket hub for the widget transport
	hub := websocket.NewHub(chatService, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, chatService, preferenceStore, hub, os.Getenv("WIDGET_SITE_KEY"), logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Portfolio assistant started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
