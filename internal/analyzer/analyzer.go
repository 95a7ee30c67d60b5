// Package analyzer normalizes and tokenizes document content for corpus
// ingestion: NFKC normalization, lowercasing, and UAX#29 word segmentation.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode normalization (NFKC) and converts to lowercase.
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Tokenize splits text into normalized word tokens, dropping segments that
// carry no letter or digit (whitespace and bare punctuation).
func Tokenize(s string) []string {
	iter := words.FromString(Normalize(s))
	var tokens []string
	for iter.Next() {
		token := iter.Value()
		if hasAlphanumeric(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
