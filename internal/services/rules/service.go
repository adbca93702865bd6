// Package rules implements word validation for a round. A winning word
// is checked in a fixed order: length first, then dictionary
// membership, then the letter constraint. The first failing check
// produces the rejection reason.
package rules

import (
	"fmt"
	"strings"

	"github.com/wordrace/server/internal/services/dictionary"
)

// Result is the outcome of validating a submitted word
type Result struct {
	Valid bool
	// Word is the normalized form (trimmed, lowercased) when valid
	Word   string
	Reason string
}

// ValidateWord checks a submission against the round's two letters.
// The word must start with one letter and end with the other, in
// either order.
func ValidateWord(raw, letterA, letterB string, minLength int, dict dictionary.Checker) Result {
	word := strings.ToLower(strings.TrimSpace(raw))

	if len(word) < minLength {
		return Result{Reason: fmt.Sprintf("Min %d chars", minLength)}
	}

	if !dict.IsEnglishWord(word) {
		return Result{Reason: "Not a word"}
	}

	a := strings.ToLower(letterA)
	b := strings.ToLower(letterB)

	matches := (strings.HasPrefix(word, a) && strings.HasSuffix(word, b)) ||
		(strings.HasPrefix(word, b) && strings.HasSuffix(word, a))
	if !matches {
		return Result{Reason: "Wrong letters"}
	}

	return Result{Valid: true, Word: word}
}
