package transcript

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	t.Parallel()

	segmenter := NewSegmenter(nil)

	tests := []struct {
		name      string
		sentences []string
		expect    []Pair
	}{
		{
			name:      "empty input",
			sentences: nil,
			expect:    nil,
		},
		{
			name: "no questions drops everything",
			sentences: []string{
				"I started in QA.",
				"Then I moved to backend work.",
			},
			expect: nil,
		},
		{
			name: "single question with multi-sentence answer",
			sentences: []string{
				"What is a zombie process?",
				"It's a finished process whose exit code hasn't been read.",
				"It holds a PID but no CPU.",
			},
			expect: []Pair{{
				Question: "What is a zombie process?",
				Answer:   "It's a finished process whose exit code hasn't been read. It holds a PID but no CPU.",
			}},
		},
		{
			name: "preamble before first question is dropped",
			sentences: []string{
				"Let's begin.",
				"How are you?",
			},
			expect: []Pair{{
				Question: "How are you?",
				Answer:   AnswerPlaceholder,
			}},
		},
		{
			name: "consecutive questions give placeholder answer",
			sentences: []string{
				"What is DNS?",
				"How does TLS work?",
				"It encrypts traffic using certificates.",
			},
			expect: []Pair{
				{Question: "What is DNS?", Answer: AnswerPlaceholder},
				{Question: "How does TLS work?", Answer: "It encrypts traffic using certificates."},
			},
		},
		{
			name: "trailing sentences attach to the last question",
			sentences: []string{
				"Why did the deploy fail?",
				"The migration locked a table.",
				"We rolled it back.",
			},
			expect: []Pair{{
				Question: "Why did the deploy fail?",
				Answer:   "The migration locked a table. We rolled it back.",
			}},
		},
		{
			name: "whitespace collapsed at emission",
			sentences: []string{
				"What   is \t a  pod?",
				"A  pod is the smallest\n deployable unit.",
			},
			expect: []Pair{{
				Question: "What is a pod?",
				Answer:   "A pod is the smallest deployable unit.",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := segmenter.Segment(tt.sentences)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("unexpected pairs:\n got: %+v\nwant: %+v", got, tt.expect)
			}
		})
	}
}

// The final question is emitted even when no answer followed it. An earlier
// revision of the extractor silently dropped such trailing questions; the
// placeholder behavior is the canonical one and the interviewer still sees
// the unanswered question in the report.
func TestSegmentEmitsTrailingQuestionWithoutAnswer(t *testing.T) {
	t.Parallel()

	segmenter := NewSegmenter(nil)
	pairs := segmenter.Segment([]string{
		"Tell me about a production incident.",
		"A cron job wiped a cache at noon.",
		"Do you have any questions for us?",
	})

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[1].Question != "Do you have any questions for us?" {
		t.Fatalf("unexpected trailing question: %q", pairs[1].Question)
	}
	if pairs[1].Answer != AnswerPlaceholder {
		t.Fatalf("expected placeholder answer, got %q", pairs[1].Answer)
	}
}

func TestSegmentEveryQuestionAppearsOnce(t *testing.T) {
	t.Parallel()

	sentences := []string{
		"Warmup chatter before the interview.",
		"What is a goroutine?",
		"A lightweight thread managed by the runtime.",
		"How do channels work?",
		"Which scheduler runs them?",
		"The Go runtime scheduler.",
	}

	segmenter := NewSegmenter(nil)
	pairs := segmenter.Segment(sentences)

	questions := []string{
		"What is a goroutine?",
		"How do channels work?",
		"Which scheduler runs them?",
	}

	if len(pairs) != len(questions) {
		t.Fatalf("expected %d pairs, got %d", len(questions), len(pairs))
	}
	for i, q := range questions {
		if pairs[i].Question != q {
			t.Fatalf("pair %d: expected question %q, got %q", i, q, pairs[i].Question)
		}
	}
}
