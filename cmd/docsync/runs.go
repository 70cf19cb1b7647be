package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/docsync/internal/store"
)

var flagLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [path]",
	Short: "List recent sync runs from the ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("runs", err)
	}
	repoRoot := findRepoRoot(targetDir)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return outputError("runs", err)
	}

	dbPath := resolveDBPath(repoRoot, cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError("runs", err)
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return outputError("runs", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return outputError("runs", err)
	}

	runs, err := s.RecentRuns(flagLimit)
	if err != nil {
		return outputError("runs", err)
	}
	results := make([]CLIRun, 0, len(runs))
	for _, r := range runs {
		cr := CLIRun{
			ID:        r.ID,
			Generator: r.Generator,
			DryRun:    r.DryRun,
			StartedAt: r.StartedAt.Format(time.RFC3339),
			Files:     r.Files,
			Updated:   r.Updated,
			Skipped:   r.Skipped,
			Failed:    r.Failed,
			Comments:  r.Comments,
		}
		if r.FinishedAt != nil {
			cr.FinishedAt = r.FinishedAt.Format(time.RFC3339)
		}
		results = append(results, cr)
	}
	return outputResult(CLIResult{Command: "runs", Results: results})
}

// relTo returns path relative to root, or relative to the working directory
// when root is empty. Falls back to path when no relative form exists.
func relTo(root, path string) string {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		root = wd
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
