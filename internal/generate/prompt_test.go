package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrompt(t *testing.T) {
	got := FormatPrompt(
		"Header.",
		`
		indented
		  nested
		`,
		"===",
	)
	assert.Equal(t, "Header.\n\nindented\n  nested\n\n===", got)
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "single", dedent("single"))
	assert.Equal(t, "a\n b", dedent("  a\n   b"))
	assert.Equal(t, "a\n\nb", dedent("\ta\n\n\tb"))
	assert.Equal(t, "a\n  b", dedent("a\n  b"), "no common indent")
}
