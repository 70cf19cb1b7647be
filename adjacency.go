package docsync

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// resolveMatch turns a raw match into a ParsedFunction. It widens the
// function to its line start, stitches stacked comment captures into one
// run, and keeps the run only if it ends on the line directly above the
// function. A blank line in between detaches the comment. Matches without a
// usable function capture are dropped.
func resolveMatch(content string, m rawMatch) (ParsedFunction, bool) {
	if !m.hasFn || m.fn.end <= m.fn.start || m.fn.end > len(content) {
		return ParsedFunction{}, false
	}

	funcStart := lineStart(content, m.fn.start)
	fn := ParsedFunction{
		Start: funcStart,
		Func:  content[funcStart:m.fn.end],
		Name:  m.name,
	}

	runStart, runEnd := lastCommentRun(content, m.docs)
	if runStart >= 0 && runEnd <= funcStart && isStacked(content[runEnd:funcStart]) {
		fn.Start = runStart
		fn.Comment = content[runStart:runEnd]
	}

	fn.Key = hashFunc(fn.Func)
	fn.Line = 1 + strings.Count(content[:fn.Start], "\n")
	return fn, true
}

// lineStart walks back from offset to the first byte of its line. Offset 0
// is a valid line start.
func lineStart(content string, offset int) int {
	for offset > 0 && content[offset-1] != '\n' {
		offset--
	}
	return offset
}

// lastCommentRun returns the bounds of the last run of stacked comments, or
// (-1, -1) when there are none. Two comments are stacked when the gap between
// them is whitespace holding exactly one newline; a blank line or any code
// starts a new run.
func lastCommentRun(content string, docs []span) (int, int) {
	runStart, runEnd := -1, -1
	for _, d := range docs {
		if d.end <= d.start || d.end > len(content) {
			continue
		}
		if runEnd < 0 || d.start < runEnd || !isStacked(content[runEnd:d.start]) {
			runStart = d.start
		}
		runEnd = d.end
	}
	return runStart, runEnd
}

// isStacked reports whether gap is optional whitespace, one newline,
// optional whitespace.
func isStacked(gap string) bool {
	newlines := 0
	for i := 0; i < len(gap); i++ {
		switch {
		case gap[i] == '\n':
			newlines++
		case !isSpace(gap[i]):
			return false
		}
	}
	return newlines == 1
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func hashFunc(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// functionSet accumulates records across query passes, one per function
// body hash, in first-seen order. It is owned by a single Extract call.
type functionSet struct {
	order []string
	byKey map[string]ParsedFunction
}

func newFunctionSet() *functionSet {
	return &functionSet{byKey: make(map[string]ParsedFunction)}
}

// add merges fn into the set. A later record replaces an earlier one for the
// same body unless that would drop a comment: a comment-less record never
// replaces a commented one, and between two commented records the longer
// run (smaller Start) wins, the later one on ties.
//
// This is not "later query always wins": a more specific query that misses
// the comment must not erase what an earlier query paired.
func (s *functionSet) add(fn ParsedFunction) {
	prev, ok := s.byKey[fn.Key]
	if !ok {
		s.order = append(s.order, fn.Key)
		s.byKey[fn.Key] = fn
		return
	}
	if supersedes(fn, prev) {
		s.byKey[fn.Key] = fn
	}
}

func supersedes(next, prev ParsedFunction) bool {
	switch {
	case !next.HasComment():
		return !prev.HasComment()
	case !prev.HasComment():
		return true
	default:
		return next.Start <= prev.Start
	}
}

// records returns the accumulated functions in first-seen order.
func (s *functionSet) records() []ParsedFunction {
	if len(s.order) == 0 {
		return nil
	}
	out := make([]ParsedFunction, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}
