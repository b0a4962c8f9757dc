package corpus

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"

	"github.com/mitchellh/mapstructure"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const defaultCollection = "interview_questions"

// Store is the similarity index holding the reference corpus. It wraps an
// embedded chromem collection: documents are reference questions, metadata
// carries the grading ground truth.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

// Open creates or opens the index. An empty path gives an in-memory store,
// which is what the tests use. The embedding func converts question text to
// vectors and must be the same for seeding and querying.
func Open(path, collectionName string, embed chromem.EmbeddingFunc, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collectionName == "" {
		collectionName = defaultCollection
	}

	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open corpus database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open corpus collection %q: %w", collectionName, err)
	}

	return &Store{db: db, collection: collection, logger: logger}, nil
}

// Count returns the number of reference items in the index.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Seed inserts the reference items. Document IDs are derived from the
// question text so reseeding the same corpus replaces rather than duplicates.
func (s *Store) Seed(ctx context.Context, items []ReferenceItem) error {
	if len(items) == 0 {
		return fmt.Errorf("no reference items to seed")
	}

	docs := make([]chromem.Document, 0, len(items))
	for _, item := range items {
		docs = append(docs, chromem.Document{
			ID:      documentID(item.Question),
			Content: item.Question,
			Metadata: map[string]string{
				"ideal_answer": item.IdealAnswer,
				"keywords":     item.Keywords,
				"topic":        item.Topic,
				"difficulty":   string(item.Difficulty),
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("seed corpus: %w", err)
	}

	s.logger.Info("seeded reference corpus",
		zap.Int("added", len(docs)),
		zap.Int("total", s.collection.Count()),
	)

	return nil
}

// LookupNearest returns the single closest reference item for the question,
// or nil when the index holds nothing to match against. A non-nil error means
// the index itself failed and the whole evaluation should abort.
func (s *Store) LookupNearest(ctx context.Context, question string) (*ReferenceItem, error) {
	if s.collection.Count() == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, question, 1, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	item, err := itemFromResult(results[0])
	if err != nil {
		return nil, err
	}

	s.logger.Debug("matched reference question",
		zap.String("question", question),
		zap.String("matched", item.Question),
		zap.Float32("similarity", results[0].Similarity),
	)

	return item, nil
}

func itemFromResult(result chromem.Result) (*ReferenceItem, error) {
	var item ReferenceItem
	if err := mapstructure.Decode(result.Metadata, &item); err != nil {
		return nil, fmt.Errorf("decode reference metadata: %w", err)
	}

	item.Question = result.Content
	item.Difficulty = ParseDifficulty(string(item.Difficulty))
	if item.Topic == "" {
		item.Topic = "General"
	}

	return &item, nil
}

func documentID(question string) string {
	sum := sha256.Sum256([]byte(question))
	return fmt.Sprintf("q_%x", sum[:6])
}
