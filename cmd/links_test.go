package cmd

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "Docs", 24, "Docs"},
		{"exact", "abcdef", 6, "abcdef"},
		{"ascii", "abcdefghij", 8, "abcde..."},
		{"multibyte", "日本語のドキュメントページ", 8, "日本語のド..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
