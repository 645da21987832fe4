// Package clause splits prompts into comma-delimited clauses and tags each
// clause with a semantic category.
package clause

import (
	"strings"
	"unicode"

	"github.com/rcliao/scene-adapter/internal/model"
)

// Clause is a contiguous, trimmed, comma-delimited unit of a prompt.
type Clause struct {
	Text     string
	Position int
	Category model.Category
}

// Split breaks text on top-level commas. Commas inside a closed pair of
// double quotes or a matched (), [] or {} do not split. Unclosed quotes and
// brackets protect nothing, and a quote right after a digit is an inch mark.
// Empty clauses are dropped; positions count only the clauses that survive.
func Split(text string) []Clause {
	runes := []rune(text)
	inside := enclosed(runes)

	var clauses []Clause
	var current strings.Builder
	flush := func() {
		t := strings.TrimSpace(current.String())
		current.Reset()
		if t == "" {
			return
		}
		clauses = append(clauses, Clause{Text: t, Position: len(clauses)})
	}

	for i, r := range runes {
		if r == ',' && !inside[i] {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return clauses
}

// enclosed marks the runes that sit within a closed quote pair or a matched
// bracket pair.
func enclosed(runes []rune) []bool {
	inside := make([]bool, len(runes))
	mark := func(from, to int) {
		for j := from; j <= to; j++ {
			inside[j] = true
		}
	}

	open := -1
	for i, r := range runes {
		if r != '"' {
			continue
		}
		switch {
		case open >= 0:
			mark(open, i)
			open = -1
		case i > 0 && unicode.IsDigit(runes[i-1]):
		default:
			open = i
		}
	}

	var stack []int
	for i, r := range runes {
		if inside[i] {
			continue
		}
		switch r {
		case '(', '[', '{':
			stack = append(stack, i)
		case ')', ']', '}':
			if n := len(stack); n > 0 {
				mark(stack[n-1], i)
				stack = stack[:n-1]
			}
		}
	}
	return inside
}

// Join reassembles clauses in the order given, comma separated.
func Join(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.Text
	}
	return strings.Join(parts, ", ")
}
