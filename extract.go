package docsync

import (
	"context"
	"path/filepath"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docsync/internal/grammar"
)

// span is a half-open byte range [start, end) in the source.
type span struct {
	start, end int
}

// rawMatch is one query match transcribed literally: the function node and
// whatever comment nodes the pattern paired with it. Nothing is validated.
type rawMatch struct {
	query string
	fn    span
	hasFn bool
	name  string
	docs  []span
}

// Extract finds every function-like declaration in content together with the
// doc comment directly above it. language is a language name such as "go" or
// "typescript"; path supplies the extension used to pick a dialect grammar.
//
// Unsupported languages, languages without queries, and content that cannot
// be parsed all yield nil. Callers treat that the same as a file with no
// functions.
func Extract(ctx context.Context, content, language, path string) []ParsedFunction {
	lang, ok := grammar.ParseLanguage(language)
	if !ok {
		return nil
	}
	return ExtractLanguage(ctx, content, lang, filepath.Ext(path))
}

// ExtractLanguage is Extract for an already-resolved language.
func ExtractLanguage(ctx context.Context, content string, lang grammar.Language, ext string) []ParsedFunction {
	g, queries, ok := grammar.Compile(lang, ext)
	if !ok || len(queries) == 0 {
		return nil
	}

	src := []byte(content)
	tree, err := parse(ctx, g, src)
	if err != nil {
		return nil
	}
	defer tree.Close()

	set := newFunctionSet()
	root := tree.RootNode()
	for _, q := range queries {
		for _, m := range runQuery(q, root, src) {
			if fn, ok := resolveMatch(content, m); ok {
				set.add(fn)
			}
		}
	}
	return set.records()
}

// parse builds a concrete syntax tree for src.
func parse(ctx context.Context, g *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)
	return parser.ParseCtx(ctx, nil, src)
}

// runQuery executes one compiled query from root and returns its matches in
// the order the cursor reports them.
func runQuery(q grammar.CompiledQuery, root *sitter.Node, src []byte) []rawMatch {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q.Q, root)

	var out []rawMatch
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		m = cursor.FilterPredicates(m, src)

		rm := rawMatch{query: q.Name}
		for _, c := range m.Captures {
			switch q.Q.CaptureNameForId(c.Index) {
			case grammar.CaptureFunc:
				rm.fn = trimmedSpan(src, c.Node)
				rm.hasFn = true
				rm.name = declarationName(c.Node, src)
			case grammar.CaptureDoc:
				rm.docs = append(rm.docs, trimmedSpan(src, c.Node))
			}
		}
		sort.SliceStable(rm.docs, func(i, j int) bool {
			return rm.docs[i].start < rm.docs[j].start
		})
		out = append(out, rm)
	}
	return out
}

// trimmedSpan returns the node's byte range without trailing whitespace.
// Some grammars fold the terminating newline into line-comment nodes; the
// newline belongs to the gap, not the comment.
func trimmedSpan(src []byte, n *sitter.Node) span {
	s := span{start: int(n.StartByte()), end: int(n.EndByte())}
	for s.end > s.start && isSpace(src[s.end-1]) {
		s.end--
	}
	return s
}

// nameTypes are node kinds that hold a declaration's identifier in grammars
// without a "name" field.
var nameTypes = map[string]bool{
	"identifier":           true,
	"simple_identifier":    true,
	"field_identifier":     true,
	"property_identifier":  true,
	"qualified_identifier": true,
	"destructor_name":      true,
	"operator_name":        true,
	"name":                 true,
}

// declarationName finds the declared name of a function node: the "name"
// field when present, else down the C-style declarator chain, else the first
// identifier-like child.
func declarationName(n *sitter.Node, src []byte) string {
	for depth := 0; depth < 8; depth++ {
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
		d := n.ChildByFieldName("declarator")
		if d == nil {
			break
		}
		if nameTypes[d.Type()] {
			return d.Content(src)
		}
		n = d
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && nameTypes[c.Type()] {
			return c.Content(src)
		}
	}
	return ""
}
