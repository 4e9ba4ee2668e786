// Package utils provides input cleaning for free-text search queries.
package utils

import (
	"strings"
	"unicode"
)

const defaultMaxQueryLength = 1000

// QueryCleaner normalizes raw user search input before it reaches the
// query translation layer: markup, control characters and zero-width
// characters are stripped, whitespace is collapsed, and over-long queries
// are truncated.
type QueryCleaner struct {
	maxLength int
}

func NewQueryCleaner(maxLength int) *QueryCleaner {
	if maxLength <= 0 {
		maxLength = defaultMaxQueryLength
	}
	return &QueryCleaner{maxLength: maxLength}
}

// Clean returns the sanitized query. The result may be empty, which callers
// treat as an unfiltered match-all search.
func (c *QueryCleaner) Clean(query string) string {
	query = stripTags(query)

	var b strings.Builder
	b.Grow(len(query))
	for _, r := range query {
		switch {
		case r == 0 || unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r':
			continue
		case isZeroWidth(r):
			continue
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	if len(cleaned) > c.maxLength {
		cleaned = strings.TrimSpace(cleaned[:c.maxLength])
	}
	return cleaned
}

// stripTags removes anything between angle brackets. Unclosed tags swallow
// the rest of the input.
func stripTags(input string) string {
	for {
		start := strings.IndexByte(input, '<')
		if start == -1 {
			return input
		}
		end := strings.IndexByte(input[start:], '>')
		if end == -1 {
			return input[:start]
		}
		input = input[:start] + input[start+end+1:]
	}
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u200E', '\u200F':
		return true
	}
	return false
}
