package transcript

import (
	"strings"
	"unicode"
)

// Clean collapses any run of whitespace into a single space and trims the ends.
// Cleaning an already-clean string returns it unchanged.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitSentences splits punctuated text into an ordered sequence of sentences.
// A sentence ends at '.', '!' or '?' followed by whitespace or end of input.
// Empty fragments are dropped. The function is total: any input, including the
// empty string, yields a valid (possibly empty) sequence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
