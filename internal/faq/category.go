package faq

import "strings"

// Categories returned by Categorize.
const (
	CategoryHowTo       = "How-To"
	CategoryDefinition  = "Definition"
	CategoryExplanation = "Explanation"
	CategoryTiming      = "Timing"
	CategoryExample     = "Example"
	CategoryGeneral     = "General"
)

// categoryTerms are checked in order; the first category with a matching
// term wins. Terms cover English and Spanish phrasing.
var categoryTerms = []struct {
	category string
	terms    []string
}{
	{CategoryHowTo, []string{"how", "cómo", "como"}},
	{CategoryDefinition, []string{"what is", "qué es", "que es", "what"}},
	{CategoryExplanation, []string{"why", "por qué", "porque", "por que"}},
	{CategoryTiming, []string{"when", "cuándo", "cuando"}},
	{CategoryExample, []string{"example", "ejemplo"}},
}

// Categorize assigns a coarse category from keywords in a normalized question.
func Categorize(normalized string) string {
	padded := " " + strings.Join(strings.FieldsFunc(normalized, isSeparator), " ") + " "
	for _, c := range categoryTerms {
		for _, term := range c.terms {
			if strings.Contains(padded, " "+term+" ") {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', ',', ';', ':', '?', '!', '.', '¿', '¡', '(', ')', '"', '\'':
		return true
	}
	return false
}
