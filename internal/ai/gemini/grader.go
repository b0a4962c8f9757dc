package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/rvenkatesh/interview-grader/internal/ai"
	"github.com/rvenkatesh/interview-grader/internal/corpus"
	"github.com/rvenkatesh/interview-grader/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Grader scores candidate answers with a Gemini grading prompt.
type Grader struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewGrader creates a Grader on top of the provided content generator.
func NewGrader(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Grader {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Grader{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Grade builds the grading prompt from the reference item and the candidate's
// question and answer, sends it to the model and parses the JSON verdict.
// Retry behavior for rate limiting lives in the generator; any error returned
// here is either permanent or the retries-exhausted sentinel.
func (g *Grader) Grade(ctx context.Context, question, answer string, ref *corpus.ReferenceItem) (*ai.Assessment, error) {
	if ref == nil {
		return nil, fmt.Errorf("reference item is required")
	}

	prompt := buildPrompt(question, answer, ref)

	g.logger.Debug("gemini grading request",
		zap.String("question", utils.TruncateForLog(question, g.maxLogLen)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini grading response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(question, answer string, ref *corpus.ReferenceItem) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{REFERENCE_QUESTION}}", ref.Question)
	prompt = strings.ReplaceAll(prompt, "{{IDEAL_ANSWER}}", ref.IdealAnswer)
	prompt = strings.ReplaceAll(prompt, "{{KEYWORDS}}", ref.Keywords)
	prompt = strings.ReplaceAll(prompt, "{{DIFFICULTY}}", string(ref.Difficulty))
	prompt = strings.ReplaceAll(prompt, "{{ASKED_QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_ANSWER}}", answer)
	return prompt
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse grading response: %w", err)
	}

	score := coerceScore(data["score"])
	feedback := coerceString(data["feedback"])
	if feedback == "" {
		// The standalone test harness historically used "reasoning".
		feedback = coerceString(data["reasoning"])
	}

	relevant := true
	if v, ok := data["relevant"]; ok {
		relevant = coerceBool(v)
	}
	if !relevant {
		score = 0
	}

	return &ai.Assessment{
		Score:    score,
		Feedback: feedback,
		Relevant: relevant,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceScore(v any) int {
	f := coerceFloat(v)
	if math.IsNaN(f) {
		return 0
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
