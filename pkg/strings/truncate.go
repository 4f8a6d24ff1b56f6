// Package strings holds small text helpers for CLI output.
package strings

import (
	"strings"
	"unicode/utf8"
)

// DefaultDescriptionMaxLen is the description width used by CLI tables.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest useful width: one character plus "...".
const MinTruncateLen = 4

const ellipsis = "..."

// TruncateDescription collapses all whitespace runs (newlines included) to
// single spaces and cuts the result to at most maxLen runes, ending with
// "..." when cut. maxLen below MinTruncateLen is raised to MinTruncateLen.
func TruncateDescription(s string, maxLen int) string {
	maxLen = max(maxLen, MinTruncateLen)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// FirstSentence returns the text up to and including the first ". " or
// trailing period, with whitespace collapsed. Tool descriptions lead with a
// summary sentence followed by usage notes.
func FirstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

// Summary is FirstSentence cut to maxLen.
func Summary(s string, maxLen int) string {
	return TruncateDescription(FirstSentence(s), maxLen)
}
