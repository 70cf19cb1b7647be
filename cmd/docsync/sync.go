package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/docsync"
	"github.com/jward/docsync/internal/config"
	"github.com/jward/docsync/internal/grammar"
)

var (
	flagDryRun     bool
	flagForce      bool
	flagLanguages  string
	flagGenerator  string
	flagScriptsDir string
	flagInclude    string
	flagExclude    string
	flagSerial     bool
	flagQuiet      bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Generate and update doc comments across a repository",
	Long:  "Walks the repository, documents every changed source file with the configured generator, and records the outcome in the state database. Unchanged files and unchanged function bodies are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func init() {
	addSyncFlags(syncCmd)
	syncCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "report diffs without writing files")
	syncCmd.Flags().BoolVar(&flagForce, "force", false, "document every file, ignoring the ledger")
	syncCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "hide the progress bar")
}

// addSyncFlags registers the flags shared by sync and watch.
func addSyncFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,typescript)")
	c.Flags().StringVar(&flagGenerator, "generator", "", "generator override: script|openai")
	c.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load generator scripts from disk path instead of embedded")
	c.Flags().StringVar(&flagInclude, "include", "", "comma-separated glob patterns of files to document")
	c.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated glob patterns of files to skip")
	c.Flags().BoolVar(&flagSerial, "serial", false, "process files one at a time")
}

// applyFlags overlays command-line flags on cfg.
func applyFlags(cfg *config.Config) error {
	if flagGenerator != "" {
		cfg.Generator.Kind = flagGenerator
	}
	if flagScriptsDir != "" {
		cfg.Script.Dir = flagScriptsDir
	}
	if flagLanguages != "" {
		cfg.Paths.Languages = splitList(flagLanguages)
	}
	if flagInclude != "" {
		cfg.Paths.Include = splitList(flagInclude)
	}
	if flagExclude != "" {
		cfg.Paths.Exclude = append(cfg.Paths.Exclude, splitList(flagExclude)...)
	}
	if flagSerial {
		cfg.Sync.Parallel = false
	}
	if flagDryRun {
		cfg.Sync.DryRun = true
	}
	return config.Validate(cfg)
}

// engineOptions translates cfg into Engine options.
func engineOptions(cfg *config.Config) []docsync.Option {
	var langs []grammar.Language
	for _, name := range cfg.Paths.Languages {
		if l, ok := grammar.ParseLanguage(name); ok {
			langs = append(langs, l)
		}
	}
	return []docsync.Option{
		docsync.WithLanguages(langs...),
		docsync.WithInclude(cfg.Paths.Include...),
		docsync.WithExclude(cfg.Paths.Exclude...),
		docsync.WithParallel(cfg.Sync.Parallel),
		docsync.WithDryRun(cfg.Sync.DryRun),
		docsync.WithConcurrency(cfg.Generator.Concurrency),
	}
}

// openEngine loads config for targetDir's repository and builds the Engine.
func openEngine(targetDir string, extra ...docsync.Option) (*docsync.Engine, string, error) {
	repoRoot := findRepoRoot(targetDir)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, "", err
	}
	if err := applyFlags(cfg); err != nil {
		return nil, "", err
	}
	gen, err := buildGenerator(cfg, repoRoot)
	if err != nil {
		return nil, "", fmt.Errorf("building generator: %w", err)
	}

	dbPath := resolveDBPath(repoRoot, cfg)
	engine, err := docsync.New(dbPath, gen, append(engineOptions(cfg), extra...)...)
	if err != nil {
		return nil, "", fmt.Errorf("creating engine: %w", err)
	}
	return engine, dbPath, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("sync", err)
	}

	progress := newSyncProgress(os.Stderr, flagQuiet)
	engine, dbPath, err := openEngine(targetDir,
		docsync.WithForce(flagForce),
		docsync.WithProgress(progress.OnFile),
	)
	if err != nil {
		return outputError("sync", err)
	}
	defer engine.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, syncErr := engine.SyncDirectory(ctx, targetDir)
	progress.Finish()
	if report == nil {
		return outputError("sync", syncErr)
	}

	if err := outputResult(CLIResult{Command: "sync", Results: toCLISyncReport(report)}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Synced %s in %s (generator: %s)\n",
		targetDir, report.Duration.Round(time.Millisecond), report.Generator)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	if syncErr != nil {
		// Per-file errors are already in the report.
		errorHandled = true
		return syncErr
	}
	return nil
}

func toCLISyncReport(r *docsync.SyncReport) CLISyncReport {
	out := CLISyncReport{
		RunID:      r.RunID,
		Generator:  r.Generator,
		DryRun:     r.DryRun,
		Updated:    r.Updated,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Comments:   r.Comments,
		DurationMS: r.Duration.Milliseconds(),
		Files:      make([]CLIFileResult, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, CLIFileResult{
			Path:       f.Path,
			Language:   f.Language,
			Status:     f.Status,
			Functions:  f.Functions,
			Documented: f.Documented,
			Updated:    f.Updated,
			Cached:     f.Cached,
			Diff:       f.Diff,
			Error:      f.Error(),
		})
	}
	return out
}

// isCanceled reports whether err only reflects an interrupted run.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
