package grammar

import "strings"

// CommentStyle describes how a language delimits documentation comments.
// Exactly one of Line or Open/Close is used when wrapping prose.
type CommentStyle struct {
	Line   string   // line doc prefix, e.g. "//"
	Open   string   // block opener, e.g. "/**"
	Middle string   // block continuation prefix, e.g. " *"
	Close  string   // block closer, e.g. " */"
	Starts []string // any comment opener the language accepts
}

var (
	cBlockStyle = CommentStyle{Open: "/**", Middle: " *", Close: " */", Starts: []string{"//", "/*"}}
	phpStyle    = CommentStyle{Open: "/**", Middle: " *", Close: " */", Starts: []string{"//", "/*", "#"}}
	goStyle     = CommentStyle{Line: "//", Starts: []string{"//", "/*"}}
	slashStyle  = CommentStyle{Line: "///", Starts: []string{"//", "/*"}}
	rubyStyle   = CommentStyle{Line: "#", Starts: []string{"#", "=begin"}}
)

// CommentStyleFor returns the doc comment style for lang. The second result
// is false for languages outside the supported set.
func CommentStyleFor(lang Language) (CommentStyle, bool) {
	switch lang {
	case Go:
		return goStyle, true
	case JavaScript, TypeScript, C, CPP, Java, Kotlin:
		return cBlockStyle, true
	case PHP:
		return phpStyle, true
	case Rust, Swift, CSharp:
		return slashStyle, true
	case Ruby:
		return rubyStyle, true
	default:
		return CommentStyle{}, false
	}
}

// IsComment reports whether text, ignoring surrounding whitespace, already
// opens with one of lang's comment delimiters.
func IsComment(lang Language, text string) bool {
	style, ok := CommentStyleFor(lang)
	if !ok {
		return false
	}
	text = strings.TrimSpace(text)
	for _, s := range style.Starts {
		if strings.HasPrefix(text, s) {
			return true
		}
	}
	return false
}

// WrapComment turns bare prose into a doc comment for lang. Text that is
// already a comment is returned trimmed. Unknown languages return the
// trimmed text unchanged.
func WrapComment(lang Language, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || IsComment(lang, text) {
		return text
	}
	style, ok := CommentStyleFor(lang)
	if !ok {
		return text
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	if style.Line != "" {
		for i, l := range lines {
			lines[i] = joinPrefix(style.Line, l)
		}
		return strings.Join(lines, "\n")
	}

	if len(lines) == 1 {
		return style.Open + " " + lines[0] + " " + strings.TrimSpace(style.Close)
	}
	var b strings.Builder
	b.WriteString(style.Open)
	for _, l := range lines {
		b.WriteByte('\n')
		b.WriteString(joinPrefix(style.Middle, l))
	}
	b.WriteByte('\n')
	b.WriteString(style.Close)
	return b.String()
}

// joinPrefix puts prefix before line with one space, or alone for blank lines.
func joinPrefix(prefix, line string) string {
	if line == "" {
		return prefix
	}
	return prefix + " " + line
}
