package transcript

import "strings"

// defaultStarters is the canonical starter set for question detection.
// The live transcription pipeline historically also matched conversational
// fillers ("explain", "so the", "ok good", ...), but those are recording-style
// specific and prone to false positives, so they are opt-in via configuration.
var defaultStarters = []string{
	"what", "how", "why", "where", "when", "who", "which", "whose",
	"can you", "could you", "would you", "do you", "did you", "are you",
	"tell me",
}

// Classifier decides whether a single sentence functions as a question.
type Classifier struct {
	starters []string
}

// DefaultStarters returns a copy of the canonical question starter set.
func DefaultStarters() []string {
	return append([]string(nil), defaultStarters...)
}

// NewClassifier creates a classifier matching the provided starter prefixes.
// An empty list falls back to the canonical set. Starters are compared
// case-insensitively against the trimmed sentence.
func NewClassifier(starters []string) *Classifier {
	if len(starters) == 0 {
		starters = defaultStarters
	}

	normalized := make([]string, 0, len(starters))
	for _, starter := range starters {
		starter = strings.ToLower(strings.TrimSpace(starter))
		if starter == "" {
			continue
		}
		normalized = append(normalized, starter)
	}

	return &Classifier{starters: normalized}
}

// IsQuestion reports whether the sentence functions as a question. The check
// is pure and total: a trailing '?' always wins, otherwise the lowercased
// sentence must begin with one of the configured starters.
func (c *Classifier) IsQuestion(sentence string) bool {
	s := strings.ToLower(strings.TrimSpace(sentence))
	if s == "" {
		return false
	}

	if strings.HasSuffix(s, "?") {
		return true
	}

	for _, starter := range c.starters {
		if strings.HasPrefix(s, starter) {
			return true
		}
	}

	return false
}
