// Package extraction talks to a vision-capable language model and validates
// what it returns before anything reaches the stored data model.
package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/burnrate/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrMissingAPIKey is returned when the client is used without an API key.
var ErrMissingAPIKey = errors.New("extraction API key is not configured")

// Config is the explicit model configuration for a Client.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
	DefaultTaxYear    string
}

// Client sends document images to an OpenAI-compatible chat completions API.
type Client struct {
	api            *openai.Client
	model          string
	apiKey         string
	defaultTaxYear string
	limiter        *rate.Limiter
}

// NewClient builds a Client. A zero RequestsPerMinute disables throttling.
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		model:          cfg.Model,
		apiKey:         cfg.APIKey,
		defaultTaxYear: cfg.DefaultTaxYear,
		limiter:        limiter,
	}
}

// AnalyzeStatement extracts transaction signals from a statement image.
func (c *Client) AnalyzeStatement(ctx context.Context, img []byte, mimeType string) ([]models.FinancialSignal, error) {
	content, err := c.complete(ctx, statementPrompt, img, mimeType)
	if err != nil {
		return nil, err
	}
	obj, err := ExtractJSONObject(content)
	if err != nil {
		slog.Error("statement extraction returned no JSON", "raw_content", content)
		return nil, err
	}
	return ParseStatement([]byte(obj))
}

// AnalyzeTaxDocument extracts figures and observations from a tax form image.
func (c *Client) AnalyzeTaxDocument(ctx context.Context, img []byte, mimeType string) (*TaxExtraction, error) {
	content, err := c.complete(ctx, taxPrompt, img, mimeType)
	if err != nil {
		return nil, err
	}
	obj, err := ExtractJSONObject(content)
	if err != nil {
		slog.Error("tax extraction returned no JSON", "raw_content", content)
		return nil, err
	}
	return ParseTaxDocument([]byte(obj), c.defaultTaxYear)
}

func (c *Client) complete(ctx context.Context, prompt string, img []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(img))
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	}

	slog.Info("sending document to extraction model", "model", c.model, "image_bytes", len(img))
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("extraction request failed", "model", c.model, "error", err)
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("extraction response has no choices")
	}
	slog.Info("extraction model replied", "model", c.model, "total_tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
