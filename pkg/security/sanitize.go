package security

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeString drops null bytes and control characters other than newline
// and tab, then trims surrounding whitespace.
func SanitizeString(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// StripHTMLTags removes anything that looks like a markup tag
func StripHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// NormalizeWhitespace collapses every run of whitespace into a single space
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateString cuts s to at most maxLength runes
func TruncateString(s string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	return string([]rune(s)[:maxLength])
}

// SanitizeInput prepares free text for storage and printing on receipts:
// control characters and tags are removed, whitespace is collapsed and the
// result is cut to maxLength runes when maxLength is positive.
func SanitizeInput(s string, maxLength int) string {
	s = NormalizeWhitespace(StripHTMLTags(SanitizeString(s)))
	return TruncateString(s, maxLength)
}
