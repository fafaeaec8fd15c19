package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.Classifier = (*Model)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second

	// One request per second: the model is a scarce external resource
	// and the batch processor is sequential anyway.
	requestsPerSecond = 1
)

const systemPrompt = `You are a document librarian. Given the beginning of a document's text, respond with JSON only:
{"title": "...", "category": "...", "emoji": "single emoji", "tags": ["up to five short tags"], "confidence": 0.0-1.0}`

// ModelConfig holds configuration for the categorisation model.
type ModelConfig struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Model categorises documents through an OpenAI-compatible chat endpoint.
// It must be treated as unreliable; callers fall back to the heuristic on
// any error.
type Model struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// classificationPayload is the JSON shape the model is asked to return.
type classificationPayload struct {
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Emoji      string   `json:"emoji"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

// NewModel creates a model-backed classifier.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classify: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Model{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// Classify sends the preview to the chat endpoint and parses the JSON
// response into a Classification.
func (m *Model) Classify(ctx context.Context, preview string) (*domain.Classification, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: preview},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	return parsePayload(parsed.Choices[0].Message.Content)
}

// parsePayload extracts the classification JSON from the model's reply,
// tolerating surrounding prose or code fences.
func parsePayload(content string) (*domain.Classification, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parsing classification: %w", err)
	}
	if payload.Title == "" {
		return nil, fmt.Errorf("model reply missing title")
	}

	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}
	if len(payload.Tags) > 5 {
		payload.Tags = payload.Tags[:5]
	}
	if payload.Category == "" {
		payload.Category = domain.FallbackCategory
	}
	if payload.Emoji == "" {
		payload.Emoji = domain.FallbackEmoji
	}

	return &domain.Classification{
		Title:      payload.Title,
		Category:   payload.Category,
		Emoji:      payload.Emoji,
		Tags:       payload.Tags,
		Confidence: payload.Confidence,
	}, nil
}
