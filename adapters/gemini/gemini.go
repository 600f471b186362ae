package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

const (
	defaultAPIBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel           = "gemini-1.5-flash"
	defaultTemperature     = 0.7
	defaultTopK            = 40
	defaultTopP            = 0.95
	defaultMaxOutputTokens = 1000
	defaultTimeoutSeconds  = 30
)

// GeminiConfig holds configuration for the Gemini responder.
// Required fields:
// - APIKey: Your Google AI API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the generative language API
// - Model: The model to use (default: "gemini-1.5-flash")
// - Temperature, TopK, TopP, MaxOutputTokens: generation parameters
// - TimeoutSeconds: HTTP timeout for a single call (default: 30)
type GeminiConfig struct {
	APIKey          string
	APIBaseURL      string
	Model           string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
	TimeoutSeconds  int
}

// GeminiResponder implements the Responder interface against the generative
// language REST API. Each Reply issues exactly one outbound request: no
// retries, no caching, no deduplication. Failures come back as a classified
// RemoteCallError for the caller to act on.
type GeminiResponder struct {
	apiKey          string
	apiBaseURL      string
	model           string
	temperature     float64
	topK            int
	topP            float64
	maxOutputTokens int
	client          *http.Client
	persona         string
	logger          *zap.Logger
}

// Ensure GeminiResponder implements the Responder interface
var _ repositories.Responder = (*GeminiResponder)(nil)

// generateContentRequest is the wire format of the outbound call.
type generateContentRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateContentResponse is the expected success body shape. Error bodies
// may carry an explicit provider error instead of candidates.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *providerError `json:"error,omitempty"`
}

type providerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}

	if config.TopP != 0 && (config.TopP < 0 || config.TopP > 1) {
		return fmt.Errorf("topP must be between 0 and 1, got %f", config.TopP)
	}

	if config.TopK < 0 {
		return fmt.Errorf("topK must be positive, got %d", config.TopK)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewGeminiResponder creates a new Gemini responder with the given persona
// text. The persona is opaque configuration forwarded verbatim in the prompt.
func NewGeminiResponder(config GeminiConfig, persona string, logger *zap.Logger) (*GeminiResponder, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float64("temperature", temperature))
	}

	topK := config.TopK
	if topK == 0 {
		topK = defaultTopK
		logger.Info("Using default topK", zap.Int("topK", topK))
	}

	topP := config.TopP
	if topP == 0 {
		topP = defaultTopP
		logger.Info("Using default topP", zap.Float64("topP", topP))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxOutputTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
		logger.Info("Using default timeoutSeconds", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	if persona == "" {
		persona = DefaultPersona
		logger.Info("Using default persona text")
	}

	return &GeminiResponder{
		apiKey:          config.APIKey,
		apiBaseURL:      apiBaseURL,
		model:           model,
		temperature:     temperature,
		topK:            topK,
		topP:            topP,
		maxOutputTokens: maxOutputTokens,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		persona: persona,
		logger:  logger,
	}, nil
}

// Reply composes the prompt from persona + transcript + utterance and issues
// a single generateContent call. Any failure is returned as a
// *repositories.RemoteCallError; the text of a well-formed reply is returned
// untouched.
func (g *GeminiResponder) Reply(ctx context.Context, utterance string, history []entities.ChatTurn) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureMalformedPayload,
			Detail: "utterance cannot be empty",
		}
	}

	prompt := BuildPrompt(g.persona, history, utterance)

	request := generateContentRequest{
		Contents: []requestContent{
			{Parts: []contentPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     g.temperature,
			TopK:            g.topK,
			TopP:            g.topP,
			MaxOutputTokens: g.maxOutputTokens,
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureMalformedPayload,
			Detail: fmt.Sprintf("failed to marshal request: %v", err),
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.apiBaseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureNetwork,
			Detail: fmt.Sprintf("failed to create HTTP request: %v", err),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Debug("Sending generateContent request",
		zap.String("model", g.model),
		zap.Int("historyTurns", len(history)))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureNetwork,
			Detail: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureNetwork,
			Detail: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := statusLabel(resp.StatusCode)
		var errBody generateContentResponse
		if jsonErr := json.Unmarshal(body, &errBody); jsonErr == nil && errBody.Error != nil {
			detail = fmt.Sprintf("%s: %s", detail, errBody.Error.Message)
		}
		return "", &repositories.RemoteCallError{
			Kind:       repositories.FailureHTTPStatus,
			StatusCode: resp.StatusCode,
			Detail:     detail,
		}
	}

	var response generateContentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureMalformedPayload,
			Detail: fmt.Sprintf("failed to decode response: %v", err),
		}
	}

	if response.Error != nil {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureProvider,
			Detail: response.Error.Message,
		}
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureMalformedPayload,
			Detail: "response missing candidate text",
		}
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}

	if text == "" {
		return "", &repositories.RemoteCallError{
			Kind:   repositories.FailureMalformedPayload,
			Detail: "candidate text is empty",
		}
	}

	g.logger.Info("Received generateContent response",
		zap.String("model", g.model),
		zap.Int("responseLength", len(text)))

	return text, nil
}

// statusLabel subclassifies failure statuses for diagnostics only; callers
// treat every status failure identically.
func statusLabel(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "not found"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusTooManyRequests:
		return "rate limited"
	case http.StatusInternalServerError:
		return "server error"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("unexpected status %d", statusCode)
	}
}

// NewGeminiConfigFromEnv creates a new GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		APIBaseURL: os.Getenv("GEMINI_API_BASE_URL"),
		Model:      os.Getenv("GEMINI_MODEL"),
	}

	if temperatureStr := os.Getenv("GEMINI_TEMPERATURE"); temperatureStr != "" {
		if temperature, err := strconv.ParseFloat(temperatureStr, 64); err == nil && temperature >= 0 && temperature <= 1 {
			config.Temperature = temperature
		}
	}

	if topKStr := os.Getenv("GEMINI_TOP_K"); topKStr != "" {
		if topK, err := strconv.Atoi(topKStr); err == nil && topK > 0 {
			config.TopK = topK
		}
	}

	if topPStr := os.Getenv("GEMINI_TOP_P"); topPStr != "" {
		if topP, err := strconv.ParseFloat(topPStr, 64); err == nil && topP >= 0 && topP <= 1 {
			config.TopP = topP
		}
	}

	if maxTokensStr := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil && maxTokens > 0 {
			config.MaxOutputTokens = maxTokens
		}
	}

	if timeoutStr := os.Getenv("GEMINI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}
