// Package normalize turns raw post text into the token sequence every index and score is built from.
package normalize

import (
	"strings"
	"unicode"
)

// Normalize strips everything but word characters and whitespace, lowercases the rest,
// splits on whitespace and drops stopwords. Word characters are letters, numbers and '_'.
// It never fails: invalid UTF-8 decodes to U+FFFD, which is not a word character and is dropped.
// The result is nil for text without tokens.
func Normalize(text string) []string {
	cleaned := strings.Map(keepWordRune, text)
	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		if IsStopword(field) {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// keepWordRune is a strings.Map mapping. Lowercasing is done per rune so it cannot
// expand into characters that a second pass would strip.
func keepWordRune(r rune) rune {
	switch {
	case r == '_', unicode.IsLetter(r), unicode.IsNumber(r):
		return unicode.ToLower(r)
	case unicode.IsSpace(r):
		return r
	default:
		return -1
	}
}
