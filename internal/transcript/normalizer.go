package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Punctuator restores sentence-ending punctuation in raw speech-to-text
// output. It is an external collaborator; implementations wrap whatever
// punctuation-restoration service the deployment runs.
type Punctuator interface {
	Restore(ctx context.Context, text string) (string, error)
}

// Normalizer turns a raw transcript into an ordered sentence sequence,
// optionally restoring punctuation first.
type Normalizer struct {
	punctuator Punctuator
}

// NewNormalizer creates a normalizer. A nil punctuator means the transcript
// is used as-is, which is correct for already-punctuated input.
func NewNormalizer(punctuator Punctuator) *Normalizer {
	return &Normalizer{punctuator: punctuator}
}

// Sentences returns the transcript split into ordered sentences. The error is
// non-nil only when the punctuation collaborator fails.
func (n *Normalizer) Sentences(ctx context.Context, raw string) ([]string, error) {
	text := raw
	if n.punctuator != nil {
		restored, err := n.punctuator.Restore(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("restore punctuation: %w", err)
		}
		text = restored
	}

	return SplitSentences(text), nil
}

const punctuatorContentType = "application/json"

// HTTPPunctuator calls a punctuation-restoration service over HTTP. The
// service accepts {"text": ...} and replies with the punctuated text in the
// same shape.
type HTTPPunctuator struct {
	url        string
	logger     *zap.Logger
	HTTPClient *http.Client
}

// NewHTTPPunctuator creates a client for the punctuation service at url.
func NewHTTPPunctuator(url string, logger *zap.Logger) *HTTPPunctuator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPPunctuator{
		url:    url,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type punctuatorPayload struct {
	Text string `json:"text"`
}

// Restore sends the raw text to the punctuation service and returns the
// punctuated version.
func (p *HTTPPunctuator) Restore(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(punctuatorPayload{Text: text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", punctuatorContentType)

	p.logger.Debug("make request", zap.String("url", p.url))

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload punctuatorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if strings.TrimSpace(payload.Text) == "" {
		return "", fmt.Errorf("punctuation service returned empty text")
	}

	return payload.Text, nil
}
