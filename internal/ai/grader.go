package ai

import (
	"context"

	"github.com/rvenkatesh/interview-grader/internal/corpus"
)

// Assessment is the model's judgment of one candidate answer against the
// matched reference item.
type Assessment struct {
	// Score is the 0-100 grade against the ideal answer.
	Score int
	// Feedback is the model's textual justification.
	Feedback string
	// Relevant is false when the asked question does not match the
	// reference question the index returned, in which case Score is 0.
	Relevant bool
	// Raw keeps the unparsed model reply for debugging.
	Raw string
}

// Grader scores a candidate answer against the reference ground truth.
type Grader interface {
	Grade(ctx context.Context, question, answer string, ref *corpus.ReferenceItem) (*Assessment, error)
}
