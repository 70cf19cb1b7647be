package store

import (
	"database/sql"
	"fmt"
)

// CachedComment returns the comment generator produced for the function
// body hashed as funcHash. ok is false on a cache miss.
func (s *Store) CachedComment(funcHash, generator string) (text string, ok bool, err error) {
	err = s.db.QueryRow(
		"SELECT comment FROM comments WHERE func_hash = ? AND generator = ?", funcHash, generator,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cached comment: %w", err)
	}
	return text, true, nil
}

// PutComment caches c, replacing any earlier output for the same function
// and generator.
func (s *Store) PutComment(c *Comment) error {
	return putCommentTx(s.db, c)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putCommentTx(ex execer, c *Comment) error {
	_, err := ex.Exec(
		`INSERT INTO comments (func_hash, generator, language, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(func_hash, generator) DO UPDATE SET
		   language = excluded.language,
		   comment = excluded.comment,
		   created_at = excluded.created_at`,
		c.FuncHash, c.Generator, c.Language, c.Text, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put comment: %w", err)
	}
	return nil
}

// ClearComments drops every cached comment and returns how many were
// removed.
func (s *Store) ClearComments() (int64, error) {
	res, err := s.db.Exec("DELETE FROM comments")
	if err != nil {
		return 0, fmt.Errorf("clear comments: %w", err)
	}
	return res.RowsAffected()
}

// CommentCount returns the number of cached comments.
func (s *Store) CommentCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&n); err != nil {
		return 0, fmt.Errorf("comment count: %w", err)
	}
	return n, nil
}
