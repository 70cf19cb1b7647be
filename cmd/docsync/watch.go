package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/docsync"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep doc comments in sync as files change",
	Long:  "Runs an initial sync, then watches the repository and re-documents files after they change. Stops on interrupt.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addSyncFlags(watchCmd)
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", docsync.DefaultDebounce, "quiet period before syncing changed files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("watch", err)
	}

	engine, _, err := openEngine(targetDir)
	if err != nil {
		return outputError("watch", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.SyncDirectory(ctx, targetDir)
	printWatchReport(report, err)

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", targetDir)
	err = engine.Watch(ctx, targetDir, flagDebounce, printWatchReport)
	if err != nil && !isCanceled(err) {
		return outputError("watch", err)
	}
	return nil
}

// printWatchReport writes one line per changed or failed file to stderr.
func printWatchReport(report *docsync.SyncReport, err error) {
	if report != nil {
		for _, f := range report.Files {
			switch {
			case f.Err != nil:
				fmt.Fprintf(os.Stderr, "%s: %s: %v\n", f.Status, relTo("", f.Path), f.Err)
			case f.Updated > 0:
				fmt.Fprintf(os.Stderr, "%s: %s (%d comments)\n", f.Status, relTo("", f.Path), f.Updated)
			}
		}
	}
	if err != nil && !isCanceled(err) {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
	}
}
