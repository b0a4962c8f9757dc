package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultMaxAttempts = 3
	// Backoff grows linearly: attempt n sleeps n * retryDelayUnit before
	// the next try (10s, 20s, ...).
	retryDelayUnit = 10 * time.Second
)

// ErrRetriesExhausted is returned when every attempt was rejected for rate
// limiting. Callers must be able to tell this apart from parse failures and
// other permanent errors.
var ErrRetriesExhausted = errors.New("max retries exceeded")

// sleep is swapped out in tests.
var sleep = time.Sleep

type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelsCaller struct {
	client *genai.Client
}

func (m modelsCaller) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.client.Models.GenerateContent(ctx, model, contents, config)
}

// Generator wraps the Google GenAI client with prompt-based generation and a
// bounded retry policy for rate-limited calls.
type Generator struct {
	caller      contentCaller
	client      *genai.Client
	model       string
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
// maxAttempts <= 0 falls back to the default of 3 total attempts.
func NewGenerator(ctx context.Context, apiKey, model string, maxAttempts int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		caller:      modelsCaller{client: client},
		client:      client,
		model:       model,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelayUnit,
		logger:      logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual
// response. Rate-limited calls are retried up to the attempt budget with a
// linearly growing sleep; any other error is returned immediately.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.caller == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.caller.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err == nil {
			return collectText(resp)
		}

		if !isRateLimited(err) {
			return "", fmt.Errorf("generate content: %w", err)
		}

		if attempt == g.maxAttempts {
			break
		}

		wait := time.Duration(attempt) * g.retryDelay
		g.logger.Warn("rate limited by gemini api",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts),
			zap.Duration("backoff", wait),
		)
		sleep(wait)
	}

	return "", ErrRetriesExhausted
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// isRateLimited recognizes the transient "too many requests" rejection either
// as a typed API error or by its status code appearing in the error text.
func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	return strings.Contains(err.Error(), "429")
}
