// Package generate produces doc comment text for extracted functions.
//
// A Generator is the only I/O-bound step of documenting a file. The
// pipeline calls it once per function, concurrently, and feeds the results
// back into the synchronous rewriter.
package generate

import (
	"context"

	"github.com/jward/docsync/internal/grammar"
)

// Request describes one function to document.
type Request struct {
	Language grammar.Language
	Path     string
	Name     string

	// Func is the full declaration text including its body.
	Func string

	// Comment is the existing doc comment, empty when there is none.
	Comment string
}

// Generator returns comment text for a function. The text may be a complete
// comment in the language's syntax or bare prose; callers wrap prose in the
// language's delimiters. An empty string means "leave this function alone".
type Generator interface {
	// Name identifies the generator and its configuration. Cached comments
	// are keyed by it, so it must change whenever output could change.
	Name() string

	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Generator interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, req Request) (string, error)
}

// Name returns f.ID.
func (f Func) Name() string { return f.ID }

// Generate calls f.Fn.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f.Fn(ctx, req)
}
