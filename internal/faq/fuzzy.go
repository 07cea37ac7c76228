// Package faq clusters near-duplicate student questions into FAQ entries.
package faq

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a 0-100 similarity score: 100 * (1 - editDistance / longerLength),
// rounded. Two empty strings score 100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// Normalize lowercases and trims a question, strips trailing ?.! and
// collapses runs of whitespace.
func Normalize(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.TrimRight(q, "?.!")
	return strings.Join(strings.Fields(q), " ")
}
