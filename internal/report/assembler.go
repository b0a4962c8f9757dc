package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rvenkatesh/interview-grader/internal/ai"
	"github.com/rvenkatesh/interview-grader/internal/corpus"
	"github.com/rvenkatesh/interview-grader/internal/transcript"
	"github.com/rvenkatesh/interview-grader/internal/utils"
	"go.uber.org/zap"
)

// Status tags how a per-pair result was produced, so a zero score from a
// failed grading call is never mistaken for a genuinely bad answer.
type Status string

const (
	// StatusGraded is a real grade against a matched reference.
	StatusGraded Status = "graded"
	// StatusIrrelevant means the asked question did not match the
	// reference question the index returned; score is 0.
	StatusIrrelevant Status = "irrelevant"
	// StatusNoMatch means the similarity index had nothing to match
	// against; the grader was never called.
	StatusNoMatch Status = "no_match"
	// StatusFailed means the grading call failed; feedback carries the
	// error description.
	StatusFailed Status = "failed"
)

const (
	noMatchFeedback = "Question not found in database"
	noMatchQuestion = "No match found"
)

// Result is one graded question/answer pair.
type Result struct {
	Question        string            `json:"question"`
	CandidateAnswer string            `json:"candidate_answer"`
	Difficulty      corpus.Difficulty `json:"difficulty"`
	Topic           string            `json:"topic"`
	MatchedQuestion string            `json:"matched_db_question"`
	Score           int               `json:"score"`
	Feedback        string            `json:"feedback"`
	Status          Status            `json:"status"`
}

// Report aggregates the per-pair results of one evaluation run.
type Report struct {
	SourceID     string   `json:"audio_file,omitempty"`
	AverageScore float64  `json:"total_score"`
	Results      []Result `json:"results"`
}

// ByTopic groups the results by reference topic.
func (r *Report) ByTopic() map[string][]Result {
	grouped := make(map[string][]Result)
	for _, result := range r.Results {
		topic := result.Topic
		if topic == "" {
			topic = "General"
		}
		grouped[topic] = append(grouped[topic], result)
	}
	return grouped
}

// Matcher is the similarity-index contract the assembler consumes: top-1
// lookup, nil when nothing matched, error only when the index itself failed.
type Matcher interface {
	LookupNearest(ctx context.Context, question string) (*corpus.ReferenceItem, error)
}

// Assembler grades question/answer pairs sequentially and assembles the
// final report. Pairs are independent; the sequential walk with a politeness
// delay keeps the grading calls under external rate limits.
type Assembler struct {
	matcher   Matcher
	grader    ai.Grader
	pairDelay time.Duration
	logger    *zap.Logger
}

// NewAssembler creates an assembler. pairDelay is the wait inserted between
// consecutive grading calls; zero disables it.
func NewAssembler(matcher Matcher, grader ai.Grader, pairDelay time.Duration, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assembler{
		matcher:   matcher,
		grader:    grader,
		pairDelay: pairDelay,
		logger:    logger,
	}
}

// Evaluate grades every pair and returns the full report. Per-pair grading
// failures are folded into the results as tagged failure values; only index
// failures and context cancellation abort the run, in which case no partial
// report is returned. An empty pair list yields an empty report with average
// zero, which is not an error.
func (a *Assembler) Evaluate(ctx context.Context, sourceID string, pairs []transcript.Pair) (*Report, error) {
	results := make([]Result, 0, len(pairs))
	total := 0

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := a.evaluatePair(ctx, pair)
		if err != nil {
			return nil, err
		}

		a.logger.Info("graded pair",
			zap.Int("pair", i+1),
			zap.Int("total_pairs", len(pairs)),
			zap.String("status", string(result.Status)),
			zap.Int("score", result.Score),
		)

		results = append(results, result)
		total += result.Score

		if i < len(pairs)-1 {
			if err := utils.WaitFor(ctx, a.pairDelay); err != nil {
				return nil, err
			}
		}
	}

	return &Report{
		SourceID:     sourceID,
		AverageScore: average(total, len(results)),
		Results:      results,
	}, nil
}

func (a *Assembler) evaluatePair(ctx context.Context, pair transcript.Pair) (Result, error) {
	result := Result{
		Question:        pair.Question,
		CandidateAnswer: pair.Answer,
	}

	ref, err := a.matcher.LookupNearest(ctx, pair.Question)
	if err != nil {
		// The index being unreachable means no pair can be scored,
		// so this is fatal to the whole request.
		return Result{}, fmt.Errorf("lookup reference for %q: %w", pair.Question, err)
	}

	if ref == nil {
		result.Difficulty = corpus.DifficultyUnknown
		result.Topic = "Unknown"
		result.MatchedQuestion = noMatchQuestion
		result.Feedback = noMatchFeedback
		result.Status = StatusNoMatch
		return result, nil
	}

	result.Difficulty = ref.Difficulty
	result.Topic = ref.Topic
	result.MatchedQuestion = ref.Question

	assessment, err := a.grader.Grade(ctx, pair.Question, pair.Answer, ref)
	if err != nil {
		a.logger.Warn("grading failed",
			zap.String("question", pair.Question),
			zap.Error(err),
		)
		result.Feedback = err.Error()
		result.Status = StatusFailed
		return result, nil
	}

	result.Score = assessment.Score
	result.Feedback = assessment.Feedback
	result.Status = StatusGraded
	if !assessment.Relevant {
		result.Status = StatusIrrelevant
	}

	return result, nil
}

func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(count)*100) / 100
}
