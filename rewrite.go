package docsync

import (
	"sort"
	"strings"
)

// edit replaces content[start:end] with text. seq is the position of the
// originating record in the caller's slice.
type edit struct {
	start, end int
	text       string
	seq        int
}

// Rewrite writes every record's UpdatedComment into content and returns the
// new text. A record with a Comment has that comment replaced; one without
// gets the new comment inserted at Start. Records with an empty
// UpdatedComment are left untouched, so with no updates the result is
// byte-identical to content.
//
// All offsets refer to content as given. The result is the same as applying
// the edits one by one from the highest Start down, where equal Starts place
// the later record's comment first. An edit that overlaps one already
// applied is dropped.
func Rewrite(content string, records []ParsedFunction) string {
	edits := make([]edit, 0, len(records))
	for i, r := range records {
		if r.UpdatedComment == "" {
			continue
		}
		end := r.Start + len(r.Comment)
		if r.Start < 0 || end > len(content) {
			continue
		}
		text := indentComment(content, r.Start, r.Func, r.UpdatedComment)
		if needsNewline(content[end:]) {
			text += "\n"
		}
		edits = append(edits, edit{start: r.Start, end: end, text: text, seq: i})
	}
	if len(edits) == 0 {
		return content
	}

	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		return edits[i].seq > edits[j].seq
	})

	size := len(content)
	for _, e := range edits {
		size += len(e.text) - (e.end - e.start)
	}
	var b strings.Builder
	b.Grow(size)

	cursor := 0
	for _, e := range edits {
		if e.start < cursor {
			continue
		}
		b.WriteString(content[cursor:e.start])
		b.WriteString(e.text)
		cursor = e.end
	}
	b.WriteString(content[cursor:])
	return b.String()
}

// needsNewline reports whether text following an inserted comment lacks a
// line break before its next non-whitespace byte.
func needsNewline(rest string) bool {
	for i := 0; i < len(rest); i++ {
		switch {
		case rest[i] == '\n':
			return false
		case !isSpace(rest[i]):
			return true
		}
	}
	return true
}
