package store

import "fmt"

// CommitBatch writes every comment buffered in batch to SQLite within a
// single transaction and empties the buffer. On error nothing is written
// and the buffer is kept.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	if len(batch.Comments) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for i := range batch.Comments {
		c := &batch.Comments[i]
		if err := putCommentTx(tx, c); err != nil {
			return fmt.Errorf("commit batch: comment %s: %w", c.FuncHash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	batch.Comments = nil
	batch.index = make(map[commentKey]int)
	return nil
}
