package corpus

import (
	"context"
	"math"
	"testing"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// stubEmbedding maps known texts onto fixed directions so similarity search
// is deterministic without a real embedding service.
func stubEmbedding(vectors map[string][]float32) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return normalize(v), nil
		}
		return normalize([]float32{1, 1, 1}), nil
	}
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func testItems() []ReferenceItem {
	return []ReferenceItem{
		{
			Question:    "What is a zombie process?",
			IdealAnswer: "A finished process whose exit status has not been read by its parent.",
			Keywords:    "exit status, PID, wait",
			Topic:       "Linux",
			Difficulty:  DifficultyJunior,
		},
		{
			Question:    "How does a hash map work internally?",
			IdealAnswer: "A hash function maps keys to buckets; collisions are chained or probed.",
			Keywords:    "hash function, collision, bucket",
			Topic:       "Data Structures",
			Difficulty:  DifficultyMid,
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	vectors := map[string][]float32{
		"What is a zombie process?":            {1, 0, 0},
		"How does a hash map work internally?": {0, 1, 0},
		"what's a zombie process":              {0.9, 0.1, 0},
	}

	store, err := Open("", "", stubEmbedding(vectors), zap.NewNop())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return store
}

func TestLookupNearestEmptyStore(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	item, err := store.LookupNearest(context.Background(), "What is DNS?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Fatalf("expected no match from empty store, got %+v", item)
	}
}

func TestSeedAndLookupNearest(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx, testItems()); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if store.Count() != 2 {
		t.Fatalf("expected 2 items, got %d", store.Count())
	}

	item, err := store.LookupNearest(ctx, "what's a zombie process")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item == nil {
		t.Fatal("expected a match")
	}
	if item.Question != "What is a zombie process?" {
		t.Fatalf("unexpected match: %q", item.Question)
	}
	if item.Difficulty != DifficultyJunior {
		t.Fatalf("unexpected difficulty: %q", item.Difficulty)
	}
	if item.Topic != "Linux" {
		t.Fatalf("unexpected topic: %q", item.Topic)
	}
	if item.IdealAnswer == "" || item.Keywords == "" {
		t.Fatalf("metadata not decoded: %+v", item)
	}
}

func TestSeedIsIdempotentPerQuestion(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx, testItems()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := store.Seed(ctx, testItems()); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if store.Count() != 2 {
		t.Fatalf("reseeding duplicated items: count = %d", store.Count())
	}
}

func TestParseDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect Difficulty
	}{
		{"junior", DifficultyJunior},
		{"Mid", DifficultyMid},
		{" SENIOR ", DifficultySenior},
		{"", DifficultyUnknown},
		{"staff", DifficultyUnknown},
	}

	for _, tt := range tests {
		if got := ParseDifficulty(tt.input); got != tt.expect {
			t.Fatalf("ParseDifficulty(%q) = %q, expected %q", tt.input, got, tt.expect)
		}
	}
}
