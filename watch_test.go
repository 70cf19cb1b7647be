package docsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_SyncsChangedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}

	root := t.TempDir()
	e := newTestEngine(t, nameGen("g"))

	reports := make(chan *SyncReport, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, root, 50*time.Millisecond, func(r *SyncReport, err error) {
			if r != nil {
				reports <- r
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)

	path := writeFile(t, filepath.Join(root, "p.go"), "package p\n\nfunc A() {}\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")

	var got *SyncReport
	deadline := time.After(10 * time.Second)
	for got == nil {
		select {
		case r := <-reports:
			if r.Updated > 0 {
				got = r
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch sync")
		}
	}

	require.Len(t, got.Files, 1)
	assert.Equal(t, path, got.Files[0].Path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package p\n\n// A is documented.\nfunc A() {}\n", string(data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	e := newTestEngine(t, nameGen("g"))
	err := e.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), 0, nil)
	require.Error(t, err)
}
