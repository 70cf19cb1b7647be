package docsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/jward/docsync/internal/grammar"
	"github.com/jward/docsync/internal/store"
)

// metaGenerator is the metadata key holding the fingerprint of the
// generator that filled the comment cache.
const metaGenerator = "generator"

// Engine orchestrates repository sync: file discovery, change detection,
// comment generation with caching, rewriting, and the run ledger.
type Engine struct {
	store       *store.Store
	gen         Generator
	languages   map[grammar.Language]bool // nil means all languages
	include     []glob.Glob               // nil means every file
	exclude     []glob.Glob
	useParallel bool
	dryRun      bool
	force       bool
	concurrency int
	logger      *slog.Logger
	progress    ProgressFunc
}

// ProgressFunc is called once per processed file, serially, with the
// number of files finished so far and the total.
type ProgressFunc func(done, total int, r FileResult)

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...grammar.Language) Option {
	return func(e *Engine) {
		if len(languages) == 0 {
			e.languages = nil
			return
		}
		e.languages = make(map[grammar.Language]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithParallel controls parallel sync. When true (default), files are
// documented by a worker pool while a single goroutine writes the ledger.
// Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithDryRun computes diffs without writing files or the file ledger.
// Generated comments are still cached.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithForce re-documents files even when their content hash matches the
// ledger.
func WithForce(force bool) Option {
	return func(e *Engine) {
		e.force = force
	}
}

// WithConcurrency bounds generation calls in flight per file.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithLogger sets the Engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgress registers a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithInclude limits sync to paths matching at least one glob. Paths are
// matched relative to the synced root with forward slashes.
func WithInclude(patterns ...string) Option {
	return func(e *Engine) {
		e.include = append(e.include, compileGlobs(patterns)...)
	}
}

// WithExclude skips paths matching any glob.
func WithExclude(patterns ...string) Option {
	return func(e *Engine) {
		e.exclude = append(e.exclude, compileGlobs(patterns)...)
	}
}

// compileGlobs compiles patterns with '/' as separator. Patterns that fail
// to compile are dropped; config validation reports them earlier.
func compileGlobs(patterns []string) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		if g, err := glob.Compile(p, '/'); err == nil {
			out = append(out, g)
		}
	}
	return out
}

// New creates an Engine backed by a SQLite database at dbPath that
// documents functions with gen.
func New(dbPath string, gen Generator, opts ...Option) (*Engine, error) {
	if gen == nil {
		return nil, errors.New("docsync: nil generator")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("docsync: create db dir: %w", err)
		}
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("docsync: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("docsync: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		gen:         gen,
		useParallel: true, // default to parallel sync
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// GeneratorChanged reports whether the generator differs from the one that
// filled the comment cache. Returns true on first run.
func (e *Engine) GeneratorChanged() bool {
	stored, err := e.store.GetMetadata(metaGenerator)
	if err != nil || stored == "" {
		return true
	}
	return stored != e.gen.Name()
}

// resetForGenerator drops cached comments and forgets file hashes when the
// generator changed, so every file is documented again with the new one.
func (e *Engine) resetForGenerator() (bool, error) {
	if !e.GeneratorChanged() {
		return false, nil
	}
	n, err := e.store.ClearComments()
	if err != nil {
		return false, err
	}
	if n > 0 {
		e.logger.Info("generator changed, cache cleared",
			slog.String("generator", e.gen.Name()),
			slog.Int64("comments", n),
		)
	}
	return true, nil
}

// FileResult reports what sync did to one file.
type FileResult struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	Status     string `json:"status"`
	Functions  int    `json:"functions"`
	Documented int    `json:"documented"`
	Updated    int    `json:"updated"`
	Cached     int    `json:"cached"`
	Diff       string `json:"diff,omitempty"`
	Err        error  `json:"-"`
}

// Error is the error text, for encoders that cannot carry an error value.
func (r FileResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// StatusSkipped marks a file whose content hash matched the ledger.
const StatusSkipped = "skipped"

// SyncReport summarizes one sync run.
type SyncReport struct {
	RunID     string        `json:"run_id"`
	Generator string        `json:"generator"`
	DryRun    bool          `json:"dry_run"`
	Files     []FileResult  `json:"files"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Comments  int           `json:"comments"`
	Duration  time.Duration `json:"duration"`
}

func (r *SyncReport) add(fr FileResult) {
	r.Files = append(r.Files, fr)
	switch fr.Status {
	case store.StatusUpdated:
		r.Updated++
		r.Comments += fr.Updated
	case StatusSkipped:
		r.Skipped++
	case store.StatusFailed, store.StatusInvalid:
		r.Failed++
	}
}

// SyncFiles documents the given file paths. When WithParallel is enabled,
// uses a worker pool with a shared in-memory comment batch that is
// committed once at the end. Otherwise falls back to the serial path.
//
// For each file:
// 1. Detect language from extension
// 2. Skip unsupported or filtered-out languages
// 3. Skip unchanged files (same content hash as the ledger)
// 4. Generate comments, reusing cached ones for unchanged function bodies
// 5. Rewrite and syntax-check, then write (or diff, in dry-run mode)
// 6. Record the outcome in the ledger
//
// Errors on individual files are recorded in the report and do not stop the
// run. The returned error summarizes them.
func (e *Engine) SyncFiles(ctx context.Context, root string, paths []string) (*SyncReport, error) {
	start := time.Now()

	force, err := e.resetForGenerator()
	if err != nil {
		return nil, fmt.Errorf("docsync: reset cache: %w", err)
	}
	force = force || e.force

	paths = e.filterPaths(root, paths)

	run, err := e.store.StartRun(e.gen.Name(), e.dryRun)
	if err != nil {
		return nil, fmt.Errorf("docsync: %w", err)
	}
	report := &SyncReport{RunID: run.ID, Generator: e.gen.Name(), DryRun: e.dryRun}

	var syncErr error
	if e.useParallel {
		syncErr = e.syncFilesParallel(ctx, root, paths, force, report)
	} else {
		syncErr = e.syncFilesSerial(ctx, root, paths, force, report)
	}

	sort.SliceStable(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})
	report.Duration = time.Since(start)
	run.Files = len(report.Files)
	run.Updated, run.Skipped, run.Failed, run.Comments = report.Updated, report.Skipped, report.Failed, report.Comments
	if err := e.store.FinishRun(run); err != nil && syncErr == nil {
		syncErr = err
	}
	// The cache now holds only this generator's output, even when some
	// files failed.
	if !e.dryRun {
		if err := e.store.SetMetadata(metaGenerator, e.gen.Name()); err != nil && syncErr == nil {
			syncErr = err
		}
	}
	return report, syncErr
}

func (e *Engine) syncFilesSerial(ctx context.Context, root string, paths []string, force bool, report *SyncReport) error {
	var errs []error
	total := len(paths)
	for i, path := range paths {
		item, skip, err := e.prepareFile(root, path, force)
		var fr FileResult
		switch {
		case err != nil:
			fr = FileResult{Path: path, Status: store.StatusFailed, Err: err}
		case skip:
			fr = FileResult{Path: path, Language: item.lang.String(), Status: StatusSkipped}
		default:
			fr = e.documentFile(ctx, item, e.store)
			if err := e.recordFile(item, fr); err != nil && fr.Err == nil {
				fr.Err = err
			}
		}
		if fr.Err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", path, fr.Err))
		}
		report.add(fr)
		e.reportProgress(i+1, total, fr)
	}
	if len(errs) > 0 {
		return fmt.Errorf("sync had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) reportProgress(done, total int, fr FileResult) {
	if e.progress != nil {
		e.progress(done, total, fr)
	}
}

// syncItem holds everything needed to document one file.
type syncItem struct {
	path    string
	rel     string
	lang    grammar.Language
	content []byte
	hash    string
	mode    fs.FileMode
}

// prepareFile reads a filtered path and reports skip=true when its content
// is unchanged since the last sync.
func (e *Engine) prepareFile(root, path string, force bool) (syncItem, bool, error) {
	lang, _ := grammar.LanguageForFile(path)
	rel := relPath(root, path)

	info, err := os.Stat(path)
	if err != nil {
		return syncItem{lang: lang}, false, fmt.Errorf("stat file: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return syncItem{lang: lang}, false, fmt.Errorf("read file: %w", err)
	}
	item := syncItem{
		path:    path,
		rel:     rel,
		lang:    lang,
		content: content,
		hash:    store.ContentHash(content),
		mode:    info.Mode().Perm(),
	}

	if force {
		return item, false, nil
	}
	existing, err := e.store.FileByPath(path)
	if err != nil {
		return item, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == item.hash && existing.Status != store.StatusFailed {
		return item, true, nil // unchanged
	}
	return item, false, nil
}

// matchesFilters applies the include and exclude globs to a root-relative
// path.
func (e *Engine) matchesFilters(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range e.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(e.include) == 0 {
		return true
	}
	for _, g := range e.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// documentFile runs Document for one file and writes the result unless in
// dry-run mode. It touches the filesystem but not the ledger, so workers
// can call it concurrently.
func (e *Engine) documentFile(ctx context.Context, item syncItem, cache CommentCache) FileResult {
	fr := FileResult{Path: item.path, Language: item.lang.String()}
	original := string(item.content)

	res, err := documentLanguage(ctx, original, item.lang, item.path, e.gen, DocumentOptions{
		Concurrency: e.concurrency,
		Cache:       cache,
		Logger:      e.logger,
	})
	fr.Functions = len(res.Functions)
	fr.Cached = res.Cached
	fr.Documented = countDocumented(res.Functions)
	if err != nil {
		fr.Err = err
		fr.Status = store.StatusFailed
		if errors.Is(err, ErrSyntaxInvalid) {
			fr.Status = store.StatusInvalid
		}
		fr.Documented = countExisting(res.Functions)
		return fr
	}

	if !res.Changed(original) {
		fr.Status = store.StatusUnchanged
		return fr
	}
	fr.Status = store.StatusUpdated
	fr.Updated = res.Updated
	fr.Diff, err = UnifiedDiff(item.rel, original, res.Content)
	if err != nil {
		fr.Err = fmt.Errorf("diff: %w", err)
		fr.Status = store.StatusFailed
		fr.Documented = countExisting(res.Functions)
		return fr
	}

	if e.dryRun {
		return fr
	}
	if err := os.WriteFile(item.path, []byte(res.Content), item.mode); err != nil {
		fr.Err = fmt.Errorf("write file: %w", err)
		fr.Status = store.StatusFailed
		fr.Documented = countExisting(res.Functions)
		return fr
	}
	e.logger.Info("updated",
		slog.String("file", item.rel),
		slog.Int("comments", res.Updated),
	)
	return fr
}

// recordFile writes fr to the ledger. The stored hash is that of the
// content now on disk, so the next run skips files this run rewrote.
func (e *Engine) recordFile(item syncItem, fr FileResult) error {
	if e.dryRun {
		return nil
	}
	hash := item.hash
	if fr.Status == store.StatusUpdated {
		if content, err := os.ReadFile(item.path); err == nil {
			hash = store.ContentHash(content)
		}
	}
	return e.store.UpsertFile(&store.File{
		Path:       item.path,
		Language:   item.lang.String(),
		Hash:       hash,
		Status:     fr.Status,
		Functions:  fr.Functions,
		Documented: fr.Documented,
		LastSynced: time.Now().UTC(),
	})
}

func countDocumented(fns []ParsedFunction) int {
	n := 0
	for _, fn := range fns {
		if fn.HasComment() || fn.UpdatedComment != "" {
			n++
		}
	}
	return n
}

func countExisting(fns []ParsedFunction) int {
	n := 0
	for _, fn := range fns {
		if fn.HasComment() {
			n++
		}
	}
	return n
}

// UnifiedDiff renders a git-style unified diff between two versions of the
// file name. Identical inputs yield "".
func UnifiedDiff(name, a, b string) (string, error) {
	name = filepath.ToSlash(name)
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// skipDirs are directory names excluded from the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"target":       true,
}

// SyncDirectory discovers files under root and syncs them. Ledger rows for
// files under root that no longer exist are pruned.
func (e *Engine) SyncDirectory(ctx context.Context, root string) (*SyncReport, error) {
	paths, err := e.ListFiles(root)
	if err != nil {
		return nil, err
	}
	if !e.dryRun {
		if err := e.pruneLedger(root, paths); err != nil {
			e.logger.Warn("prune ledger", slog.String("error", err.Error()))
		}
	}
	return e.SyncFiles(ctx, root, paths)
}

// ListFiles returns the supported source files under root that pass the
// language and glob filters. If root is inside a git repository, uses git
// ls-files to respect .gitignore. Falls back to a filesystem walk (skipping
// hidden dirs, node_modules, vendor, __pycache__ and target) if git is
// unavailable.
func (e *Engine) ListFiles(root string) ([]string, error) {
	paths, err := gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available, fall back to walk.
		paths, err = walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	return e.filterPaths(root, paths), nil
}

// filterPaths keeps the paths with a supported language that pass the
// language and glob filters.
func (e *Engine) filterPaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		lang, ok := grammar.LanguageForFile(p)
		if !ok || (e.languages != nil && !e.languages[lang]) {
			continue
		}
		if !e.matchesFilters(relPath(root, p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (e *Engine) pruneLedger(root string, live []string) error {
	files, err := e.store.Files()
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(live))
	for _, p := range live {
		keep[p] = true
	}
	prefix := filepath.Clean(root) + string(filepath.Separator)
	var gone []string
	for _, f := range files {
		if strings.HasPrefix(f.Path, prefix) && !keep[f.Path] {
			if _, err := os.Stat(f.Path); errors.Is(err, fs.ErrNotExist) {
				gone = append(gone, f.Path)
			}
		}
	}
	return e.store.DeleteFiles(gone)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := grammar.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a fallback
// when git is not available.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := grammar.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
