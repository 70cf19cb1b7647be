package grammar

import (
	"path/filepath"
	"slices"
	"strings"
)

// Language identifies a documentable source language. The set is closed:
// every switch over Language in this package lists each member explicitly,
// and TestLanguagesExhaustive fails when a member is missing from one.
type Language int

const (
	Unknown Language = iota
	Go
	JavaScript
	TypeScript
	Rust
	C
	CPP
	Java
	Kotlin
	PHP
	Ruby
	Swift
	CSharp
)

var allLanguages = []Language{
	Go,
	JavaScript,
	TypeScript,
	Rust,
	C,
	CPP,
	Java,
	Kotlin,
	PHP,
	Ruby,
	Swift,
	CSharp,
}

// Languages returns every supported language in declaration order.
func Languages() []Language {
	return slices.Clone(allLanguages)
}

// String returns the canonical lowercase name of the language.
func (l Language) String() string {
	switch l {
	case Go:
		return "go"
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case Rust:
		return "rust"
	case C:
		return "c"
	case CPP:
		return "cpp"
	case Java:
		return "java"
	case Kotlin:
		return "kotlin"
	case PHP:
		return "php"
	case Ruby:
		return "ruby"
	case Swift:
		return "swift"
	case CSharp:
		return "csharp"
	default:
		return "unknown"
	}
}

// nameToLanguage maps canonical names and common aliases to a Language.
var nameToLanguage = map[string]Language{
	"go":         Go,
	"golang":     Go,
	"javascript": JavaScript,
	"js":         JavaScript,
	"jsx":        JavaScript,
	"typescript": TypeScript,
	"ts":         TypeScript,
	"tsx":        TypeScript,
	"rust":       Rust,
	"rs":         Rust,
	"c":          C,
	"cpp":        CPP,
	"c++":        CPP,
	"cxx":        CPP,
	"java":       Java,
	"kotlin":     Kotlin,
	"kt":         Kotlin,
	"php":        PHP,
	"ruby":       Ruby,
	"rb":         Ruby,
	"swift":      Swift,
	"csharp":     CSharp,
	"c#":         CSharp,
	"cs":         CSharp,
}

// ParseLanguage converts a raw language name to a Language. Matching is
// case-insensitive. Returns (Unknown, false) for names outside the set.
func ParseLanguage(name string) (Language, bool) {
	l, ok := nameToLanguage[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unknown, false
	}
	return l, true
}

// extToLanguage maps file extensions to languages.
var extToLanguage = map[string]Language{
	".go":    Go,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".mts":   TypeScript,
	".cts":   TypeScript,
	".rs":    Rust,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hh":    CPP,
	".hxx":   CPP,
	".java":  Java,
	".kt":    Kotlin,
	".kts":   Kotlin,
	".php":   PHP,
	".rb":    Ruby,
	".swift": Swift,
	".cs":    CSharp,
}

// LanguageForFile returns the language for a file path based on its
// extension. Returns (Unknown, false) if the extension is not recognized.
func LanguageForFile(path string) (Language, bool) {
	l, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Unknown, false
	}
	return l, true
}

// Extensions returns the file extensions recognized for a language, sorted.
func Extensions(l Language) []string {
	var exts []string
	for ext, lang := range extToLanguage {
		if lang == l {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}
