package docsync

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docsync/internal/grammar"
	"github.com/jward/docsync/internal/store"
)

// nameGen documents every function with "// <name> is documented.".
func nameGen(id string) GeneratorFunc {
	return GeneratorFunc{ID: id, Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		if req.Comment != "" {
			return "", nil
		}
		return req.Name + " is documented.", nil
	}}
}

func newTestEngine(t *testing.T, gen Generator, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(dbPath, gen, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const engineGoSrc = "package p\n\nfunc A() {}\n\n// B is old.\nfunc B() {}\n"

const engineGoWant = "package p\n\n// A is documented.\nfunc A() {}\n\n// B is old.\nfunc B() {}\n"

func TestNew_CreatesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	e, err := New(dbPath, nameGen("g"))
	require.NoError(t, err)
	defer e.Close()

	require.NotNil(t, e.Store())
	assert.True(t, e.useParallel)
	assert.Equal(t, DefaultConcurrency, e.concurrency)

	// Verify the DB is usable (migration ran).
	require.NoError(t, e.Store().SetMetadata("k", "v"))
}

func TestNew_NilGenerator(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.Error(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "plain"), "x")
	_, err := New(filepath.Join(file, "db.sqlite"), nameGen("g"))
	require.Error(t, err)
}

func TestWithLanguages(t *testing.T) {
	e := newTestEngine(t, nameGen("g"), WithLanguages(grammar.Go, grammar.Rust))

	assert.True(t, e.languages[grammar.Go])
	assert.True(t, e.languages[grammar.Rust])
	assert.False(t, e.languages[grammar.TypeScript])

	e = newTestEngine(t, nameGen("g"), WithLanguages())
	assert.Nil(t, e.languages)
}

func TestSyncFiles_DocumentsAndRecords(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, nameGen("g"), WithParallel(parallel))
			root := t.TempDir()
			path := writeFile(t, filepath.Join(root, "p.go"), engineGoSrc)

			report, err := e.SyncFiles(context.Background(), root, []string{path})
			require.NoError(t, err)
			assert.Equal(t, engineGoWant, readFile(t, path))

			require.Len(t, report.Files, 1)
			fr := report.Files[0]
			assert.Equal(t, store.StatusUpdated, fr.Status)
			assert.Equal(t, 2, fr.Functions)
			assert.Equal(t, 2, fr.Documented)
			assert.Equal(t, 1, fr.Updated)
			assert.Contains(t, fr.Diff, "+// A is documented.")
			assert.Equal(t, 1, report.Updated)
			assert.Equal(t, 1, report.Comments)
			assert.NotEmpty(t, report.RunID)

			f, err := e.Store().FileByPath(path)
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.Equal(t, store.ContentHash([]byte(engineGoWant)), f.Hash)
			assert.Equal(t, store.StatusUpdated, f.Status)
			assert.Equal(t, 2, f.Documented)

			n, err := e.Store().CommentCount()
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			runs, err := e.Store().RecentRuns(1)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, report.RunID, runs[0].ID)
			assert.Equal(t, 1, runs[0].Updated)
			assert.NotNil(t, runs[0].FinishedAt)
		})
	}
}

func TestSyncFiles_SkipsUnchangedFiles(t *testing.T) {
	var calls atomic.Int32
	gen := GeneratorFunc{ID: "g", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		calls.Add(1)
		return nameGen("g").Fn(ctx, req)
	}}
	e := newTestEngine(t, gen)
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), engineGoSrc)

	_, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	before := calls.Load()

	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusSkipped, report.Files[0].Status)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, before, calls.Load())
}

func TestSyncFiles_ReusesCachedCommentsForUnchangedFunctions(t *testing.T) {
	var calls atomic.Int32
	gen := GeneratorFunc{ID: "g", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		calls.Add(1)
		return "", nil
	}}
	e := newTestEngine(t, gen)
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), "package p\n\nfunc A() {}\n")

	_, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Add a function; A's body is unchanged and served from cache.
	writeFile(t, path, "package p\n\nfunc A() {}\n\nfunc C() {}\n")
	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, report.Files, 1)
	assert.Equal(t, 1, report.Files[0].Cached)
	assert.Equal(t, store.StatusUnchanged, report.Files[0].Status)
}

func TestSyncFiles_DryRunDoesNotWrite(t *testing.T) {
	e := newTestEngine(t, nameGen("g"), WithDryRun(true))
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), engineGoSrc)

	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, engineGoSrc, readFile(t, path))
	assert.True(t, report.DryRun)
	require.Len(t, report.Files, 1)
	assert.Contains(t, report.Files[0].Diff, "--- a/p.go")
	assert.Contains(t, report.Files[0].Diff, "+// A is documented.")

	f, err := e.Store().FileByPath(path)
	require.NoError(t, err)
	assert.Nil(t, f, "dry run must not touch the ledger")

	gen, err := e.Store().GetMetadata(metaGenerator)
	require.NoError(t, err)
	assert.Empty(t, gen)
}

func TestSyncFiles_GeneratorChangeRedocumentsEverything(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), "package p\n\nfunc A() {}\n")

	e1, err := New(dbPath, nameGen("v1"))
	require.NoError(t, err)
	assert.True(t, e1.GeneratorChanged())
	_, err = e1.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.False(t, e1.GeneratorChanged())
	require.NoError(t, e1.Close())

	v2 := GeneratorFunc{ID: "v2", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		return req.Name + " is v2.", nil
	}}
	e2, err := New(dbPath, v2)
	require.NoError(t, err)
	defer e2.Close()
	assert.True(t, e2.GeneratorChanged())

	report, err := e2.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "package p\n\n// A is v2.\nfunc A() {}\n", readFile(t, path))

	n, err := e2.Store().CommentCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "comments from the old generator are cleared")
}

func TestSyncFiles_InvalidRewriteKeepsFileAndRetries(t *testing.T) {
	broken := GeneratorFunc{ID: "broken", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		return "/* unterminated", nil
	}}
	e := newTestEngine(t, broken)
	root := t.TempDir()
	src := "function f() {\n  return 1;\n}\n"
	path := writeFile(t, filepath.Join(root, "f.js"), src)

	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntaxInvalid)
	assert.Equal(t, src, readFile(t, path))
	require.Len(t, report.Files, 1)
	assert.Equal(t, store.StatusInvalid, report.Files[0].Status)
	assert.Equal(t, 1, report.Failed)

	f, err := e.Store().FileByPath(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, store.StatusInvalid, f.Status)

	// Invalid is not failed, so an unchanged file is skipped next time.
	report, err = e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, report.Files[0].Status)
}

func TestSyncFiles_FailedFileIsRetried(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	gen := GeneratorFunc{ID: "flaky", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		if fail.Load() {
			return "", assert.AnError
		}
		return "ok.", nil
	}}
	e := newTestEngine(t, gen, WithParallel(false))
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), "package p\n\nfunc A() {}\n")

	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.Error(t, err)
	assert.Equal(t, store.StatusFailed, report.Files[0].Status)

	fail.Store(false)
	report, err = e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, store.StatusUpdated, report.Files[0].Status)
	assert.Equal(t, "package p\n\n// ok.\nfunc A() {}\n", readFile(t, path))
}

func TestSyncFiles_ForceIgnoresLedger(t *testing.T) {
	var calls atomic.Int32
	gen := GeneratorFunc{ID: "g", Fn: func(ctx context.Context, req GenerateRequest) (string, error) {
		calls.Add(1)
		return "", nil
	}}
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "p.go"), "package p\n\nfunc A() {}\n")
	dbPath := filepath.Join(t.TempDir(), "test.db")

	e, err := New(dbPath, gen)
	require.NoError(t, err)
	_, err = e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	e, err = New(dbPath, gen, WithForce(true))
	require.NoError(t, err)
	defer e.Close()
	report, err := e.SyncFiles(context.Background(), root, []string{path})
	require.NoError(t, err)
	assert.Equal(t, store.StatusUnchanged, report.Files[0].Status)
	assert.Equal(t, 1, report.Files[0].Cached)
}

func TestSyncFiles_FiltersPaths(t *testing.T) {
	root := t.TempDir()
	goFile := writeFile(t, filepath.Join(root, "a.go"), "package p\n\nfunc A() {}\n")
	tsFile := writeFile(t, filepath.Join(root, "b.ts"), "function b() {}\n")
	txtFile := writeFile(t, filepath.Join(root, "readme.txt"), "hello")
	genFile := writeFile(t, filepath.Join(root, "gen", "c.go"), "package gen\n\nfunc C() {}\n")
	all := []string{goFile, tsFile, txtFile, genFile}

	e := newTestEngine(t, nameGen("g"), WithLanguages(grammar.Go), WithExclude("gen/**"))
	report, err := e.SyncFiles(context.Background(), root, all)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, goFile, report.Files[0].Path)

	e = newTestEngine(t, nameGen("g"), WithInclude("**.ts"))
	report, err = e.SyncFiles(context.Background(), root, all)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, tsFile, report.Files[0].Path)
}

func TestSyncFiles_ReportsProgress(t *testing.T) {
	var seen []int
	var total int
	e := newTestEngine(t, nameGen("g"), WithProgress(func(done, n int, r FileResult) {
		seen = append(seen, done)
		total = n
	}))
	root := t.TempDir()
	paths := []string{
		writeFile(t, filepath.Join(root, "a.go"), "package p\n\nfunc A() {}\n"),
		writeFile(t, filepath.Join(root, "b.go"), "package p\n\nfunc B() {}\n"),
		writeFile(t, filepath.Join(root, "c.go"), "package p\n\nfunc C() {}\n"),
	}

	_, err := e.SyncFiles(context.Background(), root, paths)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.ElementsMatch(t, []int{1, 2, 3}, seen)
}

func TestSyncFiles_MissingFileFails(t *testing.T) {
	e := newTestEngine(t, nameGen("g"))
	root := t.TempDir()

	report, err := e.SyncFiles(context.Background(), root, []string{filepath.Join(root, "gone.go")})
	require.Error(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, store.StatusFailed, report.Files[0].Status)
	assert.NotEmpty(t, report.Files[0].Error())
}

func TestSyncDirectory_SkipsHiddenAndVendoredDirs(t *testing.T) {
	root := t.TempDir()
	main := writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(root, "pkg", "util.go"), "package pkg\n\nfunc Util() {}\n")
	for _, dir := range []string{".hidden", "vendor", "node_modules"} {
		writeFile(t, filepath.Join(root, dir, "lib.go"), "package lib\n\nfunc Lib() {}\n")
	}
	writeFile(t, filepath.Join(root, "readme.txt"), "docs")

	e := newTestEngine(t, nameGen("g"))
	report, err := e.SyncDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	assert.Equal(t, main, report.Files[0].Path)
	assert.Equal(t, filepath.Join(root, "pkg", "util.go"), report.Files[1].Path)
	assert.Equal(t, "package lib\n\nfunc Lib() {}\n", readFile(t, filepath.Join(root, "vendor", "lib.go")))
}

func TestSyncDirectory_PrunesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, filepath.Join(root, "keep.go"), "package p\n\nfunc Keep() {}\n")
	gone := writeFile(t, filepath.Join(root, "gone.go"), "package p\n\nfunc Gone() {}\n")

	e := newTestEngine(t, nameGen("g"))
	_, err := e.SyncDirectory(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(gone))
	_, err = e.SyncDirectory(context.Background(), root)
	require.NoError(t, err)

	files, err := e.Store().Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, keep, files[0].Path)
}

func TestMatchesFilters(t *testing.T) {
	e := newTestEngine(t, nameGen("g"),
		WithInclude("src/**"),
		WithExclude("**/*_gen.go"),
	)

	assert.True(t, e.matchesFilters("src/a.go"))
	assert.True(t, e.matchesFilters("src/deep/b.go"))
	assert.False(t, e.matchesFilters("src/deep/b_gen.go"))
	assert.False(t, e.matchesFilters("lib/a.go"))
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.go"), relPath("/root", "/root/a/b.go"))
	assert.Equal(t, "/elsewhere/b.go", relPath("/root", "/elsewhere/b.go"))
	assert.Equal(t, "x.go", relPath("", "x.go"))
}

func TestUnifiedDiff(t *testing.T) {
	diff, err := UnifiedDiff(filepath.Join("sub", "p.go"), engineGoSrc, engineGoWant)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/sub/p.go")
	assert.Contains(t, diff, "+++ b/sub/p.go")
	assert.Contains(t, diff, "+// A is documented.")

	diff, err = UnifiedDiff("p.go", engineGoSrc, engineGoSrc)
	require.NoError(t, err)
	assert.Empty(t, diff)
}
