package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/docsync"
)

var flagWrite bool

var documentCmd = &cobra.Command{
	Use:   "document <file>",
	Short: "Generate doc comments for one file",
	Long:  "Documents every function in a single file with the configured generator. Prints a diff unless --write is given. Comments are cached in the state database and reused by sync.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocument,
}

func init() {
	documentCmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "write the result back to the file")
	documentCmd.Flags().StringVar(&flagLanguage, "language", "", "language override (default: detected from the file extension)")
	documentCmd.Flags().StringVar(&flagGenerator, "generator", "", "generator override: script|openai")
}

func runDocument(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("document", err)
	}
	content, lang, err := readSource(path)
	if err != nil {
		return outputError("document", err)
	}

	repoRoot := findRepoRoot(filepath.Dir(path))
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return outputError("document", err)
	}
	if err := applyFlags(cfg); err != nil {
		return outputError("document", err)
	}
	gen, err := buildGenerator(cfg, repoRoot)
	if err != nil {
		return outputError("document", err)
	}

	engine, err := docsync.New(resolveDBPath(repoRoot, cfg), gen)
	if err != nil {
		return outputError("document", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := docsync.Document(ctx, content, lang.String(), path, gen, docsync.DocumentOptions{
		Concurrency: cfg.Generator.Concurrency,
		Cache:       engine.Store(),
	})
	if err != nil {
		return outputError("document", err)
	}

	out := CLIDocument{
		File:      args[0],
		Language:  lang.String(),
		Functions: len(res.Functions),
		Updated:   res.Updated,
		Cached:    res.Cached,
	}
	if res.Changed(content) {
		if flagWrite {
			info, err := os.Stat(path)
			if err != nil {
				return outputError("document", err)
			}
			if err := os.WriteFile(path, []byte(res.Content), info.Mode().Perm()); err != nil {
				return outputError("document", fmt.Errorf("writing %s: %w", path, err))
			}
			out.Written = true
		} else {
			diff, err := docsync.UnifiedDiff(args[0], content, res.Content)
			if err != nil {
				return outputError("document", fmt.Errorf("diff: %w", err))
			}
			out.Diff = diff
		}
	}
	return outputResult(CLIResult{Command: "document", Results: out})
}
