package docsync

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jward/docsync/internal/store"
)

// syncFilesParallel syncs files using a three-phase parallel pipeline:
//
//	Phase A (serial):   Read, hash check against the ledger, filter.
//	Phase B (parallel): Generate, rewrite and write files via a worker pool.
//	Phase C (serial):   Record ledger rows, then commit cached comments.
//
// Workers share one BatchedStore so a function body that appears in two
// files is generated once per run and SQLite sees a single write
// transaction.
func (e *Engine) syncFilesParallel(ctx context.Context, root string, paths []string, force bool, report *SyncReport) error {
	total := len(paths)
	done := 0
	var errs []error

	// ---- Phase A: Serial file preparation ----
	var items []syncItem
	for _, path := range paths {
		item, skip, err := e.prepareFile(root, path, force)
		if err != nil {
			fr := FileResult{Path: path, Language: item.lang.String(), Status: store.StatusFailed, Err: err}
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			report.add(fr)
			done++
			e.reportProgress(done, total, fr)
			continue
		}
		if skip {
			fr := FileResult{Path: path, Language: item.lang.String(), Status: StatusSkipped}
			report.add(fr)
			done++
			e.reportProgress(done, total, fr)
			continue
		}
		items = append(items, item)
	}

	if len(items) > 0 {
		batch := store.NewBatchedStore(e.store)

		// ---- Phase B: Parallel documentation ----
		numWorkers := min(runtime.NumCPU(), len(items))
		if numWorkers < 1 {
			numWorkers = 1
		}

		workCh := make(chan syncItem, len(items))
		for _, item := range items {
			workCh <- item
		}
		close(workCh)

		type result struct {
			item syncItem
			fr   FileResult
		}
		resultCh := make(chan result, len(items))

		var wg sync.WaitGroup
		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for item := range workCh {
					if ctx.Err() != nil {
						resultCh <- result{item: item, fr: FileResult{
							Path: item.path, Language: item.lang.String(),
							Status: store.StatusFailed, Err: ctx.Err(),
						}}
						continue
					}
					resultCh <- result{item: item, fr: e.documentFile(ctx, item, batch)}
				}
			}()
		}

		go func() {
			wg.Wait()
			close(resultCh)
		}()

		// ---- Phase C: Serial commit ----
		for res := range resultCh {
			fr := res.fr
			if err := e.recordFile(res.item, fr); err != nil && fr.Err == nil {
				fr.Err = fmt.Errorf("record: %w", err)
			}
			if fr.Err != nil {
				errs = append(errs, fmt.Errorf("sync %s: %w", fr.Path, fr.Err))
			}
			report.add(fr)
			done++
			e.reportProgress(done, total, fr)
		}

		e.logger.Debug("commit comments", slog.Int("comments", batch.Len()))
		if err := e.store.CommitBatch(batch); err != nil {
			errs = append(errs, fmt.Errorf("commit comments: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("parallel sync had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}
