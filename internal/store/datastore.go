package store

// CommentCache is the comment cache surface used during generation. Both
// Store (direct SQLite) and BatchedStore (in-memory buffering for parallel
// workers) implement it.
type CommentCache interface {
	CachedComment(funcHash, generator string) (string, bool, error)
	PutComment(c *Comment) error
}

// Compile-time check: *Store satisfies CommentCache.
var _ CommentCache = (*Store)(nil)
