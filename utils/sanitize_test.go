package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryCleaner_Clean(t *testing.T) {
	c := NewQueryCleaner(0)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain query", "hello world", "hello world"},
		{"markup stripped", "<script>alert(1)</script>hello", "alert(1)hello"},
		{"unclosed tag swallows tail", "hello <script src=", "hello"},
		{"whitespace collapsed", "  hello \t\n  world  ", "hello world"},
		{"control characters dropped", "hel\x00lo\x07 world", "hello world"},
		{"zero width dropped", "he\u200Bllo \uFEFFworld", "hello world"},
		{"empty after cleaning", "<br/>", ""},
		{"unicode preserved", "café résumé", "café résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Clean(tt.input))
		})
	}
}

func TestQueryCleaner_Truncates(t *testing.T) {
	c := NewQueryCleaner(10)

	got := c.Clean(strings.Repeat("a", 50))
	assert.Len(t, got, 10)

	got = c.Clean("aaaa bbbb cccc")
	assert.Equal(t, "aaaa bbbb", got, "truncation must not leave trailing whitespace")
}

func TestQueryCleaner_DefaultLimit(t *testing.T) {
	c := NewQueryCleaner(0)

	got := c.Clean(strings.Repeat("a", 2000))
	assert.Len(t, got, 1000)
}
