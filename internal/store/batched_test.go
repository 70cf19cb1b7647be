package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchedStore_CachedComment_ReturnsBufferedComment(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// Create a BatchedStore (simulates what a worker goroutine uses).
	batch := NewBatchedStore(s)
	require.NoError(t, batch.PutComment(&Comment{FuncHash: "h1", Generator: "g", Language: "go", Text: "// Foo.", CreatedAt: time.Now()}))

	// Buffered but not yet in SQLite.
	text, ok, err := batch.CachedComment("h1", "g")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "// Foo.", text)

	_, ok, err = s.CachedComment("h1", "g")
	require.NoError(t, err)
	assert.False(t, ok, "buffered comments must not reach the database before commit")
}

func TestBatchedStore_CachedComment_FallsThroughToDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.PutComment(&Comment{FuncHash: "h1", Generator: "g", Language: "go", Text: "// Existing.", CreatedAt: time.Now()}))

	batch := NewBatchedStore(s)
	text, ok, err := batch.CachedComment("h1", "g")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "// Existing.", text)
}

func TestBatchedStore_PutComment_SameKeyReplaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)

	require.NoError(t, batch.PutComment(&Comment{FuncHash: "h1", Generator: "g", Text: "first"}))
	require.NoError(t, batch.PutComment(&Comment{FuncHash: "h1", Generator: "g", Text: "second"}))
	assert.Equal(t, 1, batch.Len())

	text, _, err := batch.CachedComment("h1", "g")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestBatchedStore_ConcurrentPuts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = batch.PutComment(&Comment{FuncHash: string(rune('a' + i%26)) + string(rune('0'+i/26)), Generator: "g", Text: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, batch.Len())
}

func TestCommitBatch_WritesAndClears(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, batch.PutComment(&Comment{FuncHash: "h1", Generator: "g", Language: "go", Text: "// A.", CreatedAt: now}))
	require.NoError(t, batch.PutComment(&Comment{FuncHash: "h2", Generator: "g", Language: "go", Text: "// B.", CreatedAt: now}))

	require.NoError(t, s.CommitBatch(batch))
	assert.Equal(t, 0, batch.Len())

	n, err := s.CommentCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text, ok, err := s.CachedComment("h2", "g")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "// B.", text)
}

func TestCommitBatch_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.CommitBatch(NewBatchedStore(s)))
}
