package store

import "sync"

// BatchedStore buffers comment writes in memory so parallel workers never
// contend on SQLite writes. Reads check the buffer first and then pass
// through to the underlying Store, which is safe for concurrent reads.
// CommitBatch flushes the buffer in one transaction.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	Comments []Comment
	index    map[commentKey]int
}

type commentKey struct {
	funcHash, generator string
}

// Compile-time check: *BatchedStore satisfies CommentCache.
var _ CommentCache = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store: s,
		index: make(map[commentKey]int),
	}
}

func (b *BatchedStore) CachedComment(funcHash, generator string) (string, bool, error) {
	b.mu.Lock()
	i, ok := b.index[commentKey{funcHash, generator}]
	var text string
	if ok {
		text = b.Comments[i].Text
	}
	b.mu.Unlock()
	if ok {
		return text, true, nil
	}
	return b.store.CachedComment(funcHash, generator)
}

func (b *BatchedStore) PutComment(c *Comment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := commentKey{c.FuncHash, c.Generator}
	if i, ok := b.index[k]; ok {
		b.Comments[i] = *c
		return nil
	}
	b.index[k] = len(b.Comments)
	b.Comments = append(b.Comments, *c)
	return nil
}

// Len returns the number of buffered comments.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Comments)
}
