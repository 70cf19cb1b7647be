// Package docsync keeps source-code doc comments in step with the code they
// describe. It parses a file with tree-sitter, finds every function-like
// declaration together with the doc comment directly above it, and rewrites
// the file with new or replaced comments while leaving every other byte
// untouched. Go, JavaScript, TypeScript (including TSX), Rust, C, C++, Java,
// Kotlin, PHP, Ruby, Swift and C# are supported.
//
// # Pipeline
//
// Documenting one file runs these steps:
//
//  1. Extract: [Extract] parses the file, runs the language's structural
//     queries, keeps a preceding comment only when nothing but whitespace
//     separates it from the declaration, and returns one [ParsedFunction]
//     per distinct function body.
//
//  2. Generate: a [Generator] produces comment text for each function. The
//     calls run concurrently. Bare prose is wrapped in the language's doc
//     comment delimiters.
//
//  3. Rewrite: [Rewrite] splices every UpdatedComment back in one pass,
//     reindented to the declaration.
//
//  4. Check: [CheckSyntax] re-parses the result. A rewrite that no longer
//     parses is rejected with [ErrSyntaxInvalid] and the original content
//     is kept.
//
// [Document] runs all four for one file held in memory.
//
// # Usage
//
// Sync a repository with the embedded default script generator:
//
//	rt := script.NewRuntime("", script.WithRuntimeFS(scripts.FS))
//	e, err := docsync.New(".docsync/state.db", generate.NewScript(rt, ""))
//	if err != nil { ... }
//	defer e.Close()
//
//	report, err := e.SyncDirectory(ctx, "path/to/project")
//
// # Incremental Sync
//
// [Engine.SyncFiles] skips files whose content hash matches the ledger from
// the previous run, and reuses cached comments for function bodies it has
// already seen. Changing the generator (a different model or an edited
// script) clears the cache and re-documents everything. Use [WithDryRun] to
// get unified diffs without touching files.
package docsync
