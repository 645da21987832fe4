// Package tokens estimates prompt token counts without a real vocabulary.
//
// Both modes are deterministic, return 0 for blank text, and never decrease
// when words are appended.
package tokens

import (
	"math"
	"strings"
	"unicode"

	"github.com/rcliao/scene-adapter/internal/model"
)

const (
	// TokensPerWord is the word-estimate multiplier for English text.
	TokensPerWord = 1.3
	// specialTokens accounts for start/end of text markers.
	specialTokens = 2
)

// Estimate returns the token estimate of text for the given tokenizer kind.
// Unknown kinds fall back to the word estimate.
func Estimate(text string, kind model.TokenizerKind) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if kind == model.TokenizerClip {
		return Clip(text)
	}
	return WordEstimate(text)
}

// WordEstimate scales the whitespace-delimited word count.
func WordEstimate(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(words))*TokensPerWord)) + specialTokens
}

// Clip approximates sub-word tokenization: every word is one token, long
// words split into sub-words, and each punctuation mark is its own token.
func Clip(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	n := specialTokens
	for _, w := range words {
		n += clipWord(w)
	}
	return n
}

func clipWord(w string) int {
	letters, punct := 0, 0
	for _, r := range w {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			punct++
		} else {
			letters++
		}
	}
	n := punct
	if letters > 0 {
		n += 1 + subwords(letters)
	}
	return n
}

// subwords is non-decreasing in length.
func subwords(length int) int {
	switch {
	case length > 8:
		return (length - 4) / 4
	case length > 5:
		return (length - 3) / 5
	default:
		return 0
	}
}
