package docsync

import (
	"github.com/jward/docsync/internal/generate"
	"github.com/jward/docsync/internal/grammar"
	"github.com/jward/docsync/internal/store"
)

// Public type aliases for internal types used in the Engine and Document
// APIs. These are Go type aliases (=), identical to the internal types at
// compile time. External consumers use these names; no conversion is
// needed.

type Store = store.Store
type File = store.File
type Comment = store.Comment
type Run = store.Run

type Generator = generate.Generator
type GenerateRequest = generate.Request
type GeneratorFunc = generate.Func

type Language = grammar.Language
