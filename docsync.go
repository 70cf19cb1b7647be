package docsync

import "errors"

// ParsedFunction is one function-like declaration located in a file,
// together with the doc comment that immediately precedes it.
//
// Empty strings mean "absent": a captured comment is never empty, and an
// empty UpdatedComment tells Rewrite to leave the function alone.
type ParsedFunction struct {
	// Start is the byte offset where a new or replacement comment goes: the
	// start of Comment when present, otherwise the start of the line holding
	// the declaration.
	Start int `json:"start"`

	// Comment is the existing doc block, verbatim.
	Comment string `json:"comment,omitempty"`

	// Func is the declaration text from its line start through the end of
	// its body, verbatim.
	Func string `json:"func"`

	// UpdatedComment is the replacement comment, filled in by generation.
	UpdatedComment string `json:"updated_comment,omitempty"`

	// Key is the hex SHA-256 of Func. Extraction yields one record per Key.
	Key string `json:"key"`

	// Name is the declared name when the grammar exposes one.
	Name string `json:"name,omitempty"`

	// Line is the 1-based line of Start.
	Line int `json:"line"`
}

// HasComment reports whether an existing doc comment was found.
func (f ParsedFunction) HasComment() bool {
	return f.Comment != ""
}

var (
	// ErrUnsupportedLanguage means no grammar is registered for the
	// language or file extension.
	ErrUnsupportedLanguage = errors.New("docsync: unsupported language")

	// ErrSyntaxInvalid means rewritten content no longer parses cleanly.
	// Callers must keep the original content.
	ErrSyntaxInvalid = errors.New("docsync: rewritten content has syntax errors")
)
