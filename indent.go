package docsync

import "strings"

// Indentation returns the leading spaces and tabs of the first line of
// funcText.
func Indentation(funcText string) string {
	i := 0
	for i < len(funcText) && (funcText[i] == ' ' || funcText[i] == '\t') {
		i++
	}
	return funcText[:i]
}

// NormalizeComment reflows comment so every line after the first carries the
// indentation of funcText. Indentation the comment already carried is
// removed first, keeping the one-column offset of block-comment "*" lines.
// The first line is returned flush; see indentComment for when it needs the
// prefix too.
//
// Doc comments that belong at a different indentation than their
// declaration are not handled.
func NormalizeComment(funcText, comment string) string {
	indent := Indentation(funcText)

	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	strip := carriedIndent(lines)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(lines[0]))
	for _, l := range lines[1:] {
		b.WriteByte('\n')
		l = strings.TrimRight(trimIndent(l, strip), " \t")
		if l == "" {
			continue
		}
		b.WriteString(indent)
		b.WriteString(l)
	}
	return b.String()
}

// carriedIndent is the number of leading whitespace bytes to drop from the
// continuation lines of a comment. It is the first line's own indentation
// when it has one; otherwise the continuation lines' common indentation,
// less one column when they continue a "/*" block with "*".
func carriedIndent(lines []string) int {
	if n := leadingSpace(lines[0]); n > 0 {
		return n
	}
	common := -1
	starred := true
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := leadingSpace(l)
		if common < 0 || n < common {
			common = n
		}
		if !strings.HasPrefix(l[n:], "*") {
			starred = false
		}
	}
	if common <= 0 {
		return 0
	}
	if starred && strings.HasPrefix(strings.TrimSpace(lines[0]), "/*") {
		return common - 1
	}
	return common
}

func leadingSpace(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// trimIndent removes up to n leading spaces or tabs from s.
func trimIndent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

// indentComment normalizes comment for insertion at start and prefixes the
// first line with the function's indentation unless the insertion point
// already sits right after that indentation on its line.
func indentComment(content string, start int, funcText, comment string) string {
	indent := Indentation(funcText)
	body := NormalizeComment(funcText, comment)
	if content[lineStart(content, start):start] != indent {
		body = indent + body
	}
	return body
}
