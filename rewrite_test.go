package docsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite_InsertsCommentAtFileStart(t *testing.T) {
	src := "function add(a, b) {\n  return a + b;\n}\n"
	fns := Extract(context.Background(), src, "javascript", "math.js")
	require.Len(t, fns, 1)
	fns[0].UpdatedComment = "/** Adds two numbers. */"

	got := Rewrite(src, fns)
	assert.Equal(t, "/** Adds two numbers. */\nfunction add(a, b) {\n  return a + b;\n}\n", got)
}

func TestRewrite_ReplacesExistingComment(t *testing.T) {
	src := "package p\n\n// Old text.\n// More old text.\nfunc f() {}\n"
	fns := Extract(context.Background(), src, "go", "f.go")
	require.Len(t, fns, 1)
	fns[0].UpdatedComment = "// f is new."

	got := Rewrite(src, fns)
	assert.Equal(t, "package p\n\n// f is new.\nfunc f() {}\n", got)
}

func TestRewrite_KeepsDetachedHeader(t *testing.T) {
	src := "/** Unrelated header. */\n\nfunction f() {}\n"
	fns := Extract(context.Background(), src, "javascript", "f.js")
	require.Len(t, fns, 1)
	require.False(t, fns[0].HasComment())
	fns[0].UpdatedComment = "/** f. */"

	got := Rewrite(src, fns)
	assert.Equal(t, "/** Unrelated header. */\n\n/** f. */\nfunction f() {}\n", got)
}

func TestRewrite_ReplacesRubyClassFirstMethodComment(t *testing.T) {
	src := "class A\n  # Old.\n  def f\n  end\nend\n"
	fns := Extract(context.Background(), src, "ruby", "a.rb")
	require.Len(t, fns, 1)
	require.Equal(t, "# Old.", fns[0].Comment)
	fns[0].UpdatedComment = "# New."

	got := Rewrite(src, fns)
	assert.Equal(t, "class A\n  # New.\n  def f\n  end\nend\n", got)
}

func TestRewrite_NoUpdatesIsIdentity(t *testing.T) {
	src := "package p\n\nfunc f() {}\n\n// g.\nfunc g() {}\n"
	fns := Extract(context.Background(), src, "go", "f.go")
	require.NotEmpty(t, fns)

	assert.Equal(t, src, Rewrite(src, fns))
	assert.Equal(t, src, Rewrite(src, nil))
}

func TestRewrite_IndentsInsertedBlockComment(t *testing.T) {
	src := "class A {\n  m() {\n    return 1;\n  }\n}\n"
	fns := Extract(context.Background(), src, "typescript", "a.ts")
	require.Len(t, fns, 1)
	fns[0].UpdatedComment = "/**\n * M.\n */"

	got := Rewrite(src, fns)
	assert.Equal(t, "class A {\n  /**\n   * M.\n   */\n  m() {\n    return 1;\n  }\n}\n", got)
}

func TestRewrite_ReplacesIndentedComment(t *testing.T) {
	src := "class A {\n  /** Old. */\n  m() {}\n}\n"
	fns := Extract(context.Background(), src, "typescript", "a.ts")
	require.Len(t, fns, 1)
	fns[0].UpdatedComment = "/** New. */"

	got := Rewrite(src, fns)
	assert.Equal(t, "class A {\n  /** New. */\n  m() {}\n}\n", got)
}

func TestRewrite_MultipleFunctions(t *testing.T) {
	src := "package p\n\nfunc a() {}\n\n// b.\nfunc b() {}\n\nfunc c() {}\n"
	fns := Extract(context.Background(), src, "go", "p.go")
	require.Len(t, fns, 3)
	for i := range fns {
		fns[i].UpdatedComment = "// " + fns[i].Name + " does work."
	}

	got := Rewrite(src, fns)
	want := "package p\n\n// a does work.\nfunc a() {}\n\n// b does work.\nfunc b() {}\n\n// c does work.\nfunc c() {}\n"
	assert.Equal(t, want, got)
}

func TestRewrite_EqualStartsLaterRecordFirst(t *testing.T) {
	src := "f\n"
	records := []ParsedFunction{
		{Start: 0, Func: "f", UpdatedComment: "// A"},
		{Start: 0, Func: "f", UpdatedComment: "// B"},
	}

	assert.Equal(t, "// B\n// A\nf\n", Rewrite(src, records))
}

func TestRewrite_DropsOverlappingEdit(t *testing.T) {
	src := "// one\n// two\nf\n"
	records := []ParsedFunction{
		{Start: 0, Comment: "// one\n// two", Func: "f", UpdatedComment: "// new"},
		{Start: 7, Comment: "// two", Func: "f", UpdatedComment: "// other"},
	}

	assert.Equal(t, "// new\nf\n", Rewrite(src, records))
}

func TestRewrite_SkipsOutOfRangeRecord(t *testing.T) {
	src := "f\n"
	records := []ParsedFunction{
		{Start: 5, Func: "f", UpdatedComment: "// x"},
		{Start: -1, Func: "f", UpdatedComment: "// y"},
	}

	assert.Equal(t, src, Rewrite(src, records))
}

func TestRewrite_FunctionWithoutTrailingNewline(t *testing.T) {
	src := "func f() {}"
	records := []ParsedFunction{{Start: 0, Func: src, UpdatedComment: "// f."}}

	assert.Equal(t, "// f.\nfunc f() {}", Rewrite(src, records))
}

func TestNeedsNewline(t *testing.T) {
	assert.True(t, needsNewline("func f()"))
	assert.True(t, needsNewline("  func f()"))
	assert.False(t, needsNewline("\nfunc f()"))
	assert.False(t, needsNewline("  \t\nfunc f()"))
	assert.True(t, needsNewline(""))
}
