// Package gemini generates exam questions with the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/exam"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
	temperature  = 0.7
)

// HTTPDoer abstracts the HTTP client used for API calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements app.QuestionGenerator against generateContent.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  HTTPDoer

	catalog *exam.Catalog
	logger  *zap.Logger
}

// NewClient constructs a client with explicit settings. Empty model and baseURL
// fall back to defaults; a nil catalog uses the built-in one.
func NewClient(model, apiKey, baseURL string, client HTTPDoer, catalog *exam.Catalog, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if catalog == nil {
		catalog = exam.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		catalog: catalog,
		logger:  logger,
	}, nil
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
	Temperature      float64        `json:"temperature"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Generate asks the model for cfg.QuestionCount questions and returns only the
// ones that can be played.
func (c *Client) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	body := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemInstruction(cfg, c.catalog)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: UserPrompt(cfg)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ResponseSchema(),
			Temperature:      temperature,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: gemini status %d: %s", domain.ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrGenerationFailed, err)
	}
	if len(decoded.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", domain.ErrGenerationFailed)
	}
	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	var allowed []domain.QuestionType
	if pattern, err := c.catalog.Lookup(cfg.ExamType); err == nil {
		allowed = pattern.Types
	}
	questions, dropped, err := ParseQuiz([]byte(text.String()), cfg, allowed)
	for _, d := range dropped {
		c.logger.Warn("dropped generated question", zap.String("topic", cfg.Topic), zap.Error(d))
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("quiz generated",
		zap.String("model", c.Model),
		zap.Int("questions", len(questions)),
		zap.Int("dropped", len(dropped)),
	)
	return questions, nil
}
