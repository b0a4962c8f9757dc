package transcript

import "strings"

// AnswerPlaceholder marks a question that received no answer sentences before
// the next question or the end of the transcript.
const AnswerPlaceholder = "..."

// Pair is one interview question together with the candidate's spoken answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Segmenter groups an ordered sentence sequence into question/answer pairs.
type Segmenter struct {
	classifier *Classifier
}

// NewSegmenter creates a segmenter using the provided classifier. A nil
// classifier falls back to the canonical starter set.
func NewSegmenter(classifier *Classifier) *Segmenter {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Segmenter{classifier: classifier}
}

// Segment walks the sentences once, in order, and emits question/answer
// pairs. An answer is the concatenation of all non-question sentences between
// a question and the next one; a question with no answer sentences gets the
// placeholder. Sentences seen before the first question have no pair to
// attach to and are dropped. The final question is always emitted.
func (s *Segmenter) Segment(sentences []string) []Pair {
	var pairs []Pair
	var question string
	var answerParts []string

	for _, sentence := range sentences {
		if s.classifier.IsQuestion(sentence) {
			if question != "" {
				pairs = append(pairs, newPair(question, answerParts))
			}
			question = sentence
			answerParts = answerParts[:0]
			continue
		}

		if question != "" {
			answerParts = append(answerParts, sentence)
		}
	}

	if question != "" {
		pairs = append(pairs, newPair(question, answerParts))
	}

	return pairs
}

func newPair(question string, answerParts []string) Pair {
	answer := Clean(strings.Join(answerParts, " "))
	if answer == "" {
		answer = AnswerPlaceholder
	}

	return Pair{
		Question: Clean(question),
		Answer:   answer,
	}
}
