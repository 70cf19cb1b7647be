package generate

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/docsync/internal/script"
)

// DefaultScript is the entry script used when none is configured.
const DefaultScript = "generate/default.risor"

// Script generates comments by running a Risor script. The script sees the
// function through the globals func_text, comment, name, language and
// file_path, plus the tree-sitter host functions, and its final expression
// is the comment. Returning nil or "" leaves the function untouched.
type Script struct {
	rt    *script.Runtime
	entry string
	hash  string
}

// NewScript creates a generator that runs entry inside rt.
func NewScript(rt *script.Runtime, entry string) *Script {
	if entry == "" {
		entry = DefaultScript
	}
	return &Script{rt: rt, entry: entry, hash: rt.Hash()}
}

// Name returns "script:" followed by the hash of every reachable script
// file and the entry path, so editing any script invalidates cached output.
func (s *Script) Name() string {
	return "script:" + s.entry + ":" + s.hash[:16]
}

// Generate runs the entry script for req.
func (s *Script) Generate(ctx context.Context, req Request) (string, error) {
	result, err := s.rt.RunScript(ctx, s.entry, map[string]any{
		"func_text": object.NewString(req.Func),
		"comment":   object.NewString(req.Comment),
		"name":      object.NewString(req.Name),
		"language":  object.NewString(req.Language.String()),
		"file_path": object.NewString(req.Path),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if result == nil || result == object.Nil {
		return "", nil
	}
	switch v := result.(type) {
	case *object.String:
		return v.Value(), nil
	case *object.Error:
		return "", fmt.Errorf("generate: %s: %s", s.entry, v.Inspect())
	}
	return "", fmt.Errorf("generate: %s returned %s, want string", s.entry, result.Type())
}
