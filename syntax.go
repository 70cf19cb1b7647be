package docsync

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docsync/internal/grammar"
)

// CheckSyntax parses content and reports whether the tree is free of error
// and missing nodes. It returns ErrSyntaxInvalid when the parse has errors,
// ErrUnsupportedLanguage when no grammar matches language, and nil for
// clean content.
func CheckSyntax(ctx context.Context, content, language, path string) error {
	lang, ok := grammar.ParseLanguage(language)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return CheckSyntaxLanguage(ctx, content, lang, filepath.Ext(path))
}

// CheckSyntaxLanguage is CheckSyntax for an already-resolved language.
func CheckSyntaxLanguage(ctx context.Context, content string, lang grammar.Language, ext string) error {
	g, ok := grammar.Resolve(lang, ext)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	tree, err := parse(ctx, g, []byte(content))
	if err != nil {
		return fmt.Errorf("docsync: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if n := firstError(root); n != nil {
			p := n.StartPoint()
			return fmt.Errorf("%w: %s at line %d, column %d", ErrSyntaxInvalid, errorKind(n), p.Row+1, p.Column+1)
		}
		return ErrSyntaxInvalid
	}
	return nil
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil {
			if e := firstError(c); e != nil {
				return e
			}
		}
	}
	return nil
}

func errorKind(n *sitter.Node) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %s", n.Type())
	}
	return "unexpected input"
}
