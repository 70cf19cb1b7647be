package docsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period Watch waits for before syncing.
const DefaultDebounce = 500 * time.Millisecond

// Watch syncs supported files under root whenever they change, until ctx is
// cancelled. Events are accumulated and flushed after debounce of quiet;
// onSync receives each flush's report. Files the engine itself rewrote are
// skipped on the following event because their new hash is in the ledger.
func (e *Engine) Watch(ctx context.Context, root string, debounce time.Duration, onSync func(*SyncReport, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("docsync: watch: %w", err)
	}
	defer w.Close()

	if err := addWatchDirs(w, root); err != nil {
		return fmt.Errorf("docsync: watch %s: %w", root, err)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(w, ev.Name); err != nil {
						e.logger.Warn("watch new directory", slog.String("dir", ev.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if len(e.filterPaths(root, []string{ev.Name})) == 0 {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(debounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				if _, err := os.Stat(p); err == nil {
					paths = append(paths, p)
				}
			}
			clear(pending)
			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)
			report, err := e.SyncFiles(ctx, root, paths)
			if onSync != nil {
				onSync(report, err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// addWatchDirs adds dir and its subdirectories, skipping the same
// directories as the filesystem walk.
func addWatchDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Subdirectories may vanish mid-walk.
			if path != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
