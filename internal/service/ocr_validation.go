package service

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// Word error rate is computed at word granularity: the edit distance between
// the two word sequences over the expected word count. Each distinct word is
// mapped to a private-use rune so the sequence distance reduces to a string
// edit distance.

func wordErrorRate(expected, actual string) float64 {
	expectedWords := tokenize(expected)
	actualWords := tokenize(actual)
	if len(expectedWords) == 0 {
		if len(actualWords) == 0 {
			return 0
		}
		return 1
	}

	vocab := make(map[string]rune)
	next := rune(0xE000) // private use area
	encode := func(words []string) string {
		var b strings.Builder
		for _, w := range words {
			r, ok := vocab[w]
			if !ok {
				r = next
				vocab[w] = r
				next++
			}
			b.WriteRune(r)
		}
		return b.String()
	}

	distance := levenshtein.Distance(encode(expectedWords), encode(actualWords))
	return float64(distance) / float64(len(expectedWords))
}

// matchScore is a character-level similarity in 0..1, where 1 is an exact
// match after normalization.
func matchScore(expected, actual string) float64 {
	a := strings.Join(tokenize(expected), " ")
	b := strings.Join(tokenize(actual), " ")
	if a == "" && b == "" {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	score := 1 - float64(levenshtein.Distance(a, b))/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

// tokenize lowercases, strips surrounding punctuation, and splits on
// whitespace. Empty tokens are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, ".,:;!?\"'()[]{}")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
