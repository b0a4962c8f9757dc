package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/rvenkatesh/interview-grader/internal/corpus"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testReference() *corpus.ReferenceItem {
	return &corpus.ReferenceItem{
		Question:    "What is a zombie process?",
		IdealAnswer: "A finished process whose exit status has not been read.",
		Keywords:    "exit status, PID, wait",
		Topic:       "Linux",
		Difficulty:  corpus.DifficultyJunior,
	}
}

func TestGraderGrade(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 85, "feedback": "Covers the exit status point.", "relevant": true}`}
	grader := NewGrader(stub, 0, zap.NewNop())

	assessment, err := grader.Grade(context.Background(), "what's a zombie process", "A dead process still in the table.", testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Score != 85 {
		t.Fatalf("expected score 85, got %d", assessment.Score)
	}
	if !assessment.Relevant {
		t.Fatal("expected relevant assessment")
	}
	if assessment.Feedback == "" {
		t.Fatal("expected feedback to be populated")
	}
	if assessment.Raw == "" {
		t.Fatal("expected raw reply to be kept")
	}

	for _, fragment := range []string{
		`Reference Question: "What is a zombie process?"`,
		`Ideal Answer: "A finished process whose exit status has not been read."`,
		`Required Keywords: "exit status, PID, wait"`,
		"Difficulty: Junior",
		`Question Asked: "what's a zombie process"`,
		`Candidate Answer: "A dead process still in the table."`,
	} {
		if !strings.Contains(stub.lastPrompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, stub.lastPrompt)
		}
	}
}

func TestGraderIrrelevantQuestionZeroesScore(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 70, "feedback": "Different question entirely.", "relevant": false}`}
	grader := NewGrader(stub, 0, zap.NewNop())

	assessment, err := grader.Grade(context.Background(), "capital of India", "New Delhi.", testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Relevant {
		t.Fatal("expected irrelevant assessment")
	}
	if assessment.Score != 0 {
		t.Fatalf("irrelevant answers must score 0, got %d", assessment.Score)
	}
}

func TestGraderRequiresReference(t *testing.T) {
	grader := NewGrader(&stubGenerator{}, 0, zap.NewNop())
	if _, err := grader.Grade(context.Background(), "q", "a", nil); err == nil {
		t.Fatal("expected error without reference item")
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		raw            string
		expectErr      bool
		expectScore    int
		expectFeedback string
		expectRelevant bool
	}{
		{
			name:           "plain json",
			raw:            `{"score": 40, "feedback": "Missing the PID detail."}`,
			expectScore:    40,
			expectFeedback: "Missing the PID detail.",
			expectRelevant: true,
		},
		{
			name:           "json in code fence",
			raw:            "```json\n{\"score\": 90, \"feedback\": \"Solid.\", \"relevant\": true}\n```",
			expectScore:    90,
			expectFeedback: "Solid.",
			expectRelevant: true,
		},
		{
			name:           "reasoning field fallback",
			raw:            `{"score": 55, "reasoning": "Partially correct."}`,
			expectScore:    55,
			expectFeedback: "Partially correct.",
			expectRelevant: true,
		},
		{
			name:           "string score and bounds clamp",
			raw:            `{"score": "120", "feedback": "Over-enthusiastic model."}`,
			expectScore:    100,
			expectFeedback: "Over-enthusiastic model.",
			expectRelevant: true,
		},
		{
			name:      "prose instead of json",
			raw:       "The candidate did quite well overall.",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assessment, err := parseResponse(tt.raw)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if assessment.Score != tt.expectScore {
				t.Fatalf("expected score %d, got %d", tt.expectScore, assessment.Score)
			}
			if assessment.Feedback != tt.expectFeedback {
				t.Fatalf("expected feedback %q, got %q", tt.expectFeedback, assessment.Feedback)
			}
			if assessment.Relevant != tt.expectRelevant {
				t.Fatalf("expected relevant %v, got %v", tt.expectRelevant, assessment.Relevant)
			}
		})
	}
}
