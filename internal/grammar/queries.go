package grammar

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Capture names shared by every catalog pattern.
const (
	CaptureDoc  = "doc"
	CaptureFunc = "func"
)

// Query is one structural pattern pairing comment nodes with the
// function-like declaration that follows them in the same scope.
type Query struct {
	Name    string
	Pattern string
}

// fn captures node as the function-like declaration.
func fn(node string) string {
	return fmt.Sprintf("(%s) @%s", node, CaptureFunc)
}

// docRun matches any run of comment nodes (including none) followed by decl.
// decl must contain the function capture.
func docRun(name, comment, decl string) Query {
	return Query{
		Name:    name,
		Pattern: fmt.Sprintf("(\n  (%s)* @%s\n  %s\n)", comment, CaptureDoc, decl),
	}
}

// docSingle matches exactly one comment node followed by decl.
func docSingle(name, comment, decl string) Query {
	return Query{
		Name:    name,
		Pattern: fmt.Sprintf("(\n  (%s) @%s\n  %s\n)", comment, CaptureDoc, decl),
	}
}

// firstInBody matches comments that the grammar hangs on container itself
// followed by decl as the first statement of its body. tree-sitter-ruby
// attaches the comments above a class's first method to the class node.
func firstInBody(name, container, comment, decl string) Query {
	return Query{
		Name:    name,
		Pattern: fmt.Sprintf("(%s\n  (%s)* @%s\n  (body_statement . %s)\n)", container, comment, CaptureDoc, decl),
	}
}

// QueriesFor returns the ordered structural queries for lang. Later queries
// are more specific and supersede earlier ones for the same function, so the
// order is part of the contract. Unknown languages yield nil.
//
// Some grammars renamed their comment nodes between releases; both spellings
// are listed and Compile drops whichever the linked grammar rejects.
func QueriesFor(lang Language) []Query {
	switch lang {
	case JavaScript, TypeScript:
		return []Query{
			docRun("function", "comment", fn("function_declaration")),
			// Must follow "function": the comment sits outside the export
			// wrapper, which the general pattern cannot see.
			docRun("exported_function", "comment", "(export_statement declaration: "+fn("function_declaration")+")"),
			docRun("method", "comment", fn("method_definition")),
		}
	case Go:
		return []Query{
			docRun("function", "comment", fn("function_declaration")),
			docRun("method", "comment", fn("method_declaration")),
		}
	case Rust:
		return []Query{
			docSingle("function_block_doc", "block_comment", fn("function_item")),
			docRun("function_line_doc", "line_comment", fn("function_item")),
		}
	case C, CPP:
		return []Query{
			docRun("function", "comment", fn("function_definition")),
		}
	case Java:
		return []Query{
			docRun("method", "comment", fn("method_declaration")),
			docSingle("method_block_doc", "block_comment", fn("method_declaration")),
			docRun("method_line_doc", "line_comment", fn("method_declaration")),
		}
	case Kotlin:
		return []Query{
			docRun("function", "comment", fn("function_declaration")),
			docSingle("function_block_doc", "multiline_comment", fn("function_declaration")),
			docRun("function_line_doc", "line_comment", fn("function_declaration")),
		}
	case PHP:
		return []Query{
			docRun("function", "comment", fn("function_definition")),
			docRun("method", "comment", fn("method_declaration")),
		}
	case Ruby:
		return []Query{
			docRun("method", "comment", fn("method")),
			docRun("singleton_method", "comment", fn("singleton_method")),
			firstInBody("class_first_method", "class", "comment", fn("method")),
			firstInBody("class_first_singleton_method", "class", "comment", fn("singleton_method")),
			firstInBody("module_first_method", "module", "comment", fn("method")),
			firstInBody("module_first_singleton_method", "module", "comment", fn("singleton_method")),
		}
	case Swift:
		return []Query{
			docRun("function", "comment", fn("function_declaration")),
			docSingle("function_block_doc", "multiline_comment", fn("function_declaration")),
		}
	case CSharp:
		return []Query{
			docRun("method", "comment", fn("method_declaration")),
		}
	default:
		return nil
	}
}

// CompiledQuery is a catalog Query compiled against a concrete grammar.
type CompiledQuery struct {
	Query
	Q *sitter.Query
}

type compiledKey struct {
	lang    Language
	grammar *sitter.Language
}

var (
	compiledMu    sync.Mutex
	compiledCache = map[compiledKey][]CompiledQuery{}
)

// Compile resolves the grammar for (lang, ext) and compiles every catalog
// query against it, in catalog order. Patterns the grammar rejects (unknown
// node types) are skipped. Results are cached process-wide; the returned
// queries are shared and must not be closed by callers.
func Compile(lang Language, ext string) (*sitter.Language, []CompiledQuery, bool) {
	g, ok := Resolve(lang, ext)
	if !ok {
		return nil, nil, false
	}
	key := compiledKey{lang: lang, grammar: g}

	compiledMu.Lock()
	defer compiledMu.Unlock()
	if cq, ok := compiledCache[key]; ok {
		return g, cq, true
	}

	var out []CompiledQuery
	for _, q := range QueriesFor(lang) {
		sq, err := sitter.NewQuery([]byte(q.Pattern), g)
		if err != nil {
			continue
		}
		out = append(out, CompiledQuery{Query: q, Q: sq})
	}
	compiledCache[key] = out
	return g, out, true
}
