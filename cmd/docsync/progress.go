package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jward/docsync"
)

// syncProgress renders a progress bar for a sync run on w. The bar is
// created on the first report, once the total is known.
type syncProgress struct {
	quiet bool
	w     io.Writer
	bar   *progressbar.ProgressBar
}

func newSyncProgress(w io.Writer, quiet bool) *syncProgress {
	return &syncProgress{quiet: quiet, w: w}
}

// OnFile is a docsync.ProgressFunc.
func (p *syncProgress) OnFile(done, total int, r docsync.FileResult) {
	if p.quiet {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription("Documenting files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(p.w)
			}),
		)
	}
	_ = p.bar.Set(done)
}

// Finish completes the bar if one was started.
func (p *syncProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
