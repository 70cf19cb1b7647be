package grammar

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarSet holds one tree-sitter Language per grammar. Lazily initialized
// on first call via sync.Once and read-only afterwards.
type grammarSet struct {
	golang, javascript, typescript, tsx *sitter.Language
	rust, c, cpp, java, kotlin          *sitter.Language
	php, ruby, swift, csharp            *sitter.Language
}

var (
	grammars     grammarSet
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = grammarSet{
			golang:     golang.GetLanguage(),
			javascript: javascript.GetLanguage(),
			typescript: ts.GetLanguage(),
			tsx:        tsx.GetLanguage(),
			rust:       rust.GetLanguage(),
			c:          c.GetLanguage(),
			cpp:        cpp.GetLanguage(),
			java:       java.GetLanguage(),
			kotlin:     kotlin.GetLanguage(),
			php:        php.GetLanguage(),
			ruby:       ruby.GetLanguage(),
			swift:      swift.GetLanguage(),
			csharp:     csharp.GetLanguage(),
		}
	})
}

// Resolve returns the tree-sitter grammar for lang. ext selects a dialect
// where one language has several grammars (".tsx" picks the TSX grammar for
// TypeScript); it may be empty, with or without the leading dot. Returns
// (nil, false) for languages outside the supported set.
func Resolve(lang Language, ext string) (*sitter.Language, bool) {
	initGrammars()
	switch lang {
	case Go:
		return grammars.golang, true
	case JavaScript:
		return grammars.javascript, true
	case TypeScript:
		if normalizeExt(ext) == ".tsx" {
			return grammars.tsx, true
		}
		return grammars.typescript, true
	case Rust:
		return grammars.rust, true
	case C:
		return grammars.c, true
	case CPP:
		return grammars.cpp, true
	case Java:
		return grammars.java, true
	case Kotlin:
		return grammars.kotlin, true
	case PHP:
		return grammars.php, true
	case Ruby:
		return grammars.ruby, true
	case Swift:
		return grammars.swift, true
	case CSharp:
		return grammars.csharp, true
	default:
		return nil, false
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
