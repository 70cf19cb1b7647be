package docsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentation(t *testing.T) {
	assert.Equal(t, "", Indentation("func f() {}"))
	assert.Equal(t, "    ", Indentation("    def f"))
	assert.Equal(t, "\t", Indentation("\tfunc f() {\n\t\treturn\n\t}"))
	assert.Equal(t, "", Indentation(""))
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name    string
		fn      string
		comment string
		want    string
	}{
		{
			name:    "flush function",
			fn:      "func f() {}",
			comment: "// a\n// b",
			want:    "// a\n// b",
		},
		{
			name:    "indented function",
			fn:      "    m() {}",
			comment: "// a\n// b",
			want:    "// a\n    // b",
		},
		{
			name:    "block keeps star offset",
			fn:      "  m() {}",
			comment: "/**\n * M.\n */",
			want:    "/**\n   * M.\n   */",
		},
		{
			name:    "carried indentation removed",
			fn:      "  m() {}",
			comment: "/**\n     * M.\n     */",
			want:    "/**\n   * M.\n   */",
		},
		{
			name:    "first line indentation sets strip width",
			fn:      "\tm() {}",
			comment: "    // a\n    // b",
			want:    "// a\n\t// b",
		},
		{
			name:    "surrounding blank lines trimmed",
			fn:      "f",
			comment: "\n\n// a\n\n",
			want:    "// a",
		},
		{
			name:    "inner blank line kept bare",
			fn:      "  f",
			comment: "// a\n//\n\n// b",
			want:    "// a\n  //\n\n  // b",
		},
		{
			name:    "crlf",
			fn:      "f",
			comment: "// a\r\n// b",
			want:    "// a\n// b",
		},
		{
			name:    "empty",
			fn:      "f",
			comment: "  \n ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeComment(tt.fn, tt.comment))
		})
	}
}

func TestNormalizeComment_Idempotent(t *testing.T) {
	fn := "    m() {}"
	once := NormalizeComment(fn, "/**\n * M.\n */")
	assert.Equal(t, once, NormalizeComment(fn, "    "+once))
}

func TestIndentComment(t *testing.T) {
	content := "class A {\n  m() {}\n}\n"
	start := len("class A {\n")
	assert.Equal(t, "  // m.", indentComment(content, start, "  m() {}", "// m."))

	// Insertion point already after the indentation.
	content = "class A {\n  /** old */\n  m() {}\n}\n"
	start = len("class A {\n  ")
	assert.Equal(t, "// m.", indentComment(content, start, "  m() {}", "// m."))
}
