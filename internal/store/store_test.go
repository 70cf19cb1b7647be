package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// upsertTestFile is a helper that records a file and returns it with ID set.
func upsertTestFile(t *testing.T, s *Store, path, lang string) *File {
	t.Helper()
	f := &File{
		Path:       path,
		Language:   lang,
		Hash:       "abc123",
		Status:     StatusUpdated,
		Functions:  3,
		Documented: 2,
		LastSynced: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.UpsertFile(f))
	require.Positive(t, f.ID)
	return f
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "comments", "runs", "metadata"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestWALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

// =============================================================================
// Metadata
// =============================================================================

func TestMetadata_UnsetIsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	v, err := s.GetMetadata("generator")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMetadata_SetOverwrites(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.SetMetadata("generator", "script:a"))
	require.NoError(t, s.SetMetadata("generator", "script:b"))

	v, err := s.GetMetadata("generator")
	require.NoError(t, err)
	assert.Equal(t, "script:b", v)
}

// =============================================================================
// Files
// =============================================================================

func TestUpsertFile_InsertThenUpdate(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := upsertTestFile(t, s, "src/a.ts", "typescript")

	f.Hash = "def456"
	f.Status = StatusUnchanged
	f.Documented = 3
	id := f.ID
	require.NoError(t, s.UpsertFile(f))
	assert.Equal(t, id, f.ID, "upsert keeps the row id")

	got, err := s.FileByPath("src/a.ts")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "def456", got.Hash)
	assert.Equal(t, StatusUnchanged, got.Status)
	assert.Equal(t, 3, got.Functions)
	assert.Equal(t, 3, got.Documented)
	assert.Equal(t, "typescript", got.Language)
}

func TestFileByPath_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	got, err := s.FileByPath("nope.go")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFiles_OrderedByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	upsertTestFile(t, s, "b.go", "go")
	upsertTestFile(t, s, "a.go", "go")

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, "b.go", files[1].Path)
}

func TestDeleteFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	upsertTestFile(t, s, "a.go", "go")
	upsertTestFile(t, s, "b.go", "go")
	upsertTestFile(t, s, "c.go", "go")

	require.NoError(t, s.DeleteFiles([]string{"a.go", "c.go", "missing.go"}))

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.go", files[0].Path)
}

func TestDeleteFiles_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.DeleteFiles(nil))
}

// =============================================================================
// Comments
// =============================================================================

func TestCachedComment_Miss(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, ok, err := s.CachedComment("h", "g")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedComment_KeyedByGenerator(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.PutComment(&Comment{FuncHash: "h", Generator: "g1", Language: "go", Text: "// one", CreatedAt: time.Now()}))

	_, ok, err := s.CachedComment("h", "g2")
	require.NoError(t, err)
	assert.False(t, ok, "a different generator must miss")

	text, ok, err := s.CachedComment("h", "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "// one", text)
}

func TestPutComment_Replaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.PutComment(&Comment{FuncHash: "h", Generator: "g", Text: "old", CreatedAt: time.Now()}))
	require.NoError(t, s.PutComment(&Comment{FuncHash: "h", Generator: "g", Text: "new", CreatedAt: time.Now()}))

	n, err := s.CommentCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	text, _, err := s.CachedComment("h", "g")
	require.NoError(t, err)
	assert.Equal(t, "new", text)
}

func TestClearComments(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.PutComment(&Comment{FuncHash: "a", Generator: "g", Text: "x", CreatedAt: time.Now()}))
	require.NoError(t, s.PutComment(&Comment{FuncHash: "b", Generator: "g", Text: "y", CreatedAt: time.Now()}))

	n, err := s.ClearComments()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := s.CommentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

// =============================================================================
// Runs
// =============================================================================

func TestRuns_StartFinish(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	r, err := s.StartRun("script:x", true)
	require.NoError(t, err)
	assert.Len(t, r.ID, 36, "run ids are UUIDs")
	assert.Nil(t, r.FinishedAt)

	r.Files, r.Updated, r.Skipped, r.Failed, r.Comments = 4, 2, 1, 1, 5
	require.NoError(t, s.FinishRun(r))
	require.NotNil(t, r.FinishedAt)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "script:x", got.Generator)
	assert.True(t, got.DryRun)
	assert.Equal(t, 4, got.Files)
	assert.Equal(t, 2, got.Updated)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 5, got.Comments)
	assert.NotNil(t, got.FinishedAt)
}

func TestRecentRuns_UnfinishedHasNilFinish(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.StartRun("g", false)
	require.NoError(t, err)

	runs, err := s.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].FinishedAt)
	assert.False(t, runs[0].DryRun)
}

func TestContentHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ContentHash([]byte("a")), ContentHash([]byte("a")))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
	assert.Len(t, ContentHash(nil), 64)
}
