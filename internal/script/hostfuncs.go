package script

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docsync/internal/grammar"
)

// sourceStore tracks source bytes and language for each parsed tree.
// node_text and query need to recover source/language from a Node, but
// smacker/go-tree-sitter doesn't expose Node.Tree(). We store mappings
// keyed by root node pointer (obtained via tree.RootNode() at parse time
// and by walking up Parent() at lookup time).
type sourceStore struct {
	mu      sync.RWMutex
	sources map[uintptr][]byte           // root node ptr → source bytes
	langs   map[uintptr]*sitter.Language // root node ptr → language
}

func newSourceStore() *sourceStore {
	return &sourceStore{
		sources: make(map[uintptr][]byte),
		langs:   make(map[uintptr]*sitter.Language),
	}
}

func (s *sourceStore) store(tree *sitter.Tree, src []byte, lang *sitter.Language) {
	root := tree.RootNode()
	key := uintptr(unsafe.Pointer(root))
	s.mu.Lock()
	s.sources[key] = src
	s.langs[key] = lang
	s.mu.Unlock()
}

// rootOf walks a node up to its root via Parent().
func rootOf(node *sitter.Node) *sitter.Node {
	for node.Parent() != nil {
		node = node.Parent()
	}
	return node
}

func (s *sourceStore) sourceForNode(node *sitter.Node) ([]byte, bool) {
	key := uintptr(unsafe.Pointer(rootOf(node)))
	s.mu.RLock()
	src, ok := s.sources[key]
	s.mu.RUnlock()
	return src, ok
}

func (s *sourceStore) languageForNode(node *sitter.Node) (*sitter.Language, bool) {
	key := uintptr(unsafe.Pointer(rootOf(node)))
	s.mu.RLock()
	lang, ok := s.langs[key]
	s.mu.RUnlock()
	return lang, ok
}

// makeParseSrcFn creates "parse_src".
//
// parse_src(source, language) → *sitter.Tree
func makeParseSrcFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("parse_src", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("parse_src", 2, len(args))
		}

		srcStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("parse_src: source must be a string, got %s", args[0].Type())
		}

		langStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("parse_src: language must be a string, got %s", args[1].Type())
		}

		src := []byte(srcStr.Value())
		tree, lang, err := parseSource(ctx, src, langStr.Value())
		if err != nil {
			return object.Errorf("parse_src: %v", err)
		}
		ss.store(tree, src, lang)

		proxy, err := object.NewProxy(tree)
		if err != nil {
			return object.Errorf("parse_src: proxy error: %v", err)
		}
		return proxy
	})
}

// parseSource parses src with the grammar for a language name.
func parseSource(ctx context.Context, src []byte, langName string) (*sitter.Tree, *sitter.Language, error) {
	l, ok := grammar.ParseLanguage(langName)
	if !ok {
		return nil, nil, errUnsupported(langName)
	}
	lang, ok := grammar.Resolve(l, "")
	if !ok {
		return nil, nil, errUnsupported(langName)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, err
	}
	return tree, lang, nil
}

// makeNodeTextFn creates the "node_text" host function.
//
// node_text(node) → string
//
// Exists because Risor's proxy system cannot convert strings to []byte
// for node.Content([]byte).
func makeNodeTextFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}

		node, errObj := nodeArg("node_text", args[0])
		if errObj != nil {
			return errObj
		}

		src, found := ss.sourceForNode(node)
		if !found {
			return object.Errorf("node_text: no source found for node's tree")
		}

		return object.NewString(node.Content(src))
	})
}

// makeQueryFn creates the "query" host function.
//
// query(pattern, node) → []map[string]any
//
// Each map has capture names as keys and proxied Nodes as values.
func makeQueryFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("query", 2, len(args))
		}

		patternStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("query: pattern must be a string, got %s", args[0].Type())
		}

		node, errObj := nodeArg("query", args[1])
		if errObj != nil {
			return errObj
		}

		lang, found := ss.languageForNode(node)
		if !found {
			return object.Errorf("query: no language found for node's tree")
		}

		src, found := ss.sourceForNode(node)
		if !found {
			return object.Errorf("query: no source found for node's tree")
		}

		q, err := sitter.NewQuery([]byte(patternStr.Value()), lang)
		if err != nil {
			return object.Errorf("query: invalid pattern: %v", err)
		}
		defer q.Close()

		cursor := sitter.NewQueryCursor()
		defer cursor.Close()
		cursor.Exec(q, node)

		results := []object.Object{}
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			match = cursor.FilterPredicates(match, src)

			matchMap := make(map[string]object.Object)
			for _, capture := range match.Captures {
				name := q.CaptureNameForId(capture.Index)
				nodeP, err := object.NewProxy(capture.Node)
				if err != nil {
					return object.Errorf("query: proxy error for capture %q: %v", name, err)
				}
				matchMap[name] = nodeP
			}
			results = append(results, object.NewMap(matchMap))
		}
		return object.NewList(results)
	})
}

// makeNodeChildFn creates "node_child", a safe wrapper for ChildByFieldName
// that returns Risor nil instead of a proxied Go nil pointer.
//
// node_child(node, fieldName) → Node or nil
func makeNodeChildFn() *object.Builtin {
	return object.NewBuiltin("node_child", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("node_child", 2, len(args))
		}

		node, errObj := nodeArg("node_child", args[0])
		if errObj != nil {
			return errObj
		}

		fieldStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("node_child: field must be a string, got %s", args[1].Type())
		}

		child := node.ChildByFieldName(fieldStr.Value())
		if child == nil {
			return object.Nil
		}

		p, err := object.NewProxy(child)
		if err != nil {
			return object.Errorf("node_child: proxy error: %v", err)
		}
		return p
	})
}

// makeParamNamesFn creates "param_names".
//
// param_names(func_text, language) → []string
//
// Parses the declaration on its own and lists the names in the first
// parameter list found. Returns an empty list when nothing parses.
func makeParamNamesFn() *object.Builtin {
	return object.NewBuiltin("param_names", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("param_names", 2, len(args))
		}

		srcStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("param_names: source must be a string, got %s", args[0].Type())
		}
		langStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("param_names: language must be a string, got %s", args[1].Type())
		}

		names := []object.Object{}
		for _, n := range declParamNames(ctx, srcStr.Value(), langStr.Value()) {
			names = append(names, object.NewString(n))
		}
		return object.NewList(names)
	})
}

// declParamNames parses a lone declaration and returns its parameter names.
// Methods do not parse on their own in most grammars, so the text is retried
// inside a class body. The first wrapping that parses cleanly wins.
func declParamNames(ctx context.Context, text, langName string) []string {
	var fallback []string
	for i, src := range declSources(text, langName) {
		tree, _, err := parseSource(ctx, []byte(src), langName)
		if err != nil {
			return nil
		}
		names := ParamNames(tree.RootNode(), []byte(src))
		clean := !tree.RootNode().HasError()
		tree.Close()
		if clean {
			return names
		}
		if i == 0 {
			fallback = names
		}
	}
	return fallback
}

// declSources lists the texts to try parsing for a declaration.
func declSources(text, langName string) []string {
	l, _ := grammar.ParseLanguage(langName)
	switch l {
	case grammar.JavaScript, grammar.TypeScript, grammar.Java, grammar.Kotlin, grammar.Swift, grammar.CSharp:
		return []string{text, "class X {\n" + text + "\n}"}
	case grammar.PHP:
		return []string{"<?php\n" + text, "<?php\nclass X {\n" + text + "\n}"}
	case grammar.CPP:
		return []string{text, "class X {\n" + text + "\n};"}
	default:
		return []string{text}
	}
}

// paramNameTypes are node kinds that directly name a parameter.
var paramNameTypes = map[string]bool{
	"identifier":        true,
	"simple_identifier": true,
	"variable_name":     true,
}

// ParamNames returns the parameter names of the first parameter list under
// root, in order.
func ParamNames(root *sitter.Node, src []byte) []string {
	params := findParams(root, 0)
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		c := params.NamedChild(i)
		if c == nil {
			continue
		}
		if paramNameTypes[c.Type()] {
			names = append(names, c.Content(src))
			continue
		}
		names = append(names, paramNamesOf(c, src)...)
	}
	return names
}

func findParams(n *sitter.Node, depth int) *sitter.Node {
	if n == nil || depth > 6 {
		return nil
	}
	if p := n.ChildByFieldName("parameters"); p != nil {
		return p
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if p := findParams(n.NamedChild(i), depth+1); p != nil {
			return p
		}
	}
	return nil
}

// paramNamesOf extracts the names declared by one parameter node: its
// leading identifier children (Go's "a, b int"), otherwise its name, pattern
// or declarator field.
func paramNamesOf(p *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(p.NamedChildCount()); i++ {
		c := p.NamedChild(i)
		if c == nil || !paramNameTypes[c.Type()] {
			break
		}
		names = append(names, c.Content(src))
	}
	if len(names) > 0 {
		return names
	}
	for _, field := range []string{"name", "pattern", "declarator"} {
		if f := p.ChildByFieldName(field); f != nil {
			if paramNameTypes[f.Type()] {
				return []string{f.Content(src)}
			}
			return paramNamesOf(f, src)
		}
	}
	return nil
}

func errUnsupported(name string) error {
	return fmt.Errorf("unsupported language %q", name)
}

// nodeArg unwraps a proxied *sitter.Node argument.
func nodeArg(fn string, arg object.Object) (*sitter.Node, *object.Error) {
	proxy, ok := arg.(*object.Proxy)
	if !ok {
		return nil, object.Errorf("%s: expected proxy (Node), got %s", fn, arg.Type())
	}
	node, ok := proxy.Interface().(*sitter.Node)
	if !ok {
		return nil, object.Errorf("%s: expected *sitter.Node, got %T", fn, proxy.Interface())
	}
	return node, nil
}
