package store

import (
	"database/sql"
	"fmt"
)

// UpsertFile records f under its path, replacing any previous row.
func (s *Store) UpsertFile(f *File) error {
	err := s.db.QueryRow(
		`INSERT INTO files (path, language, hash, status, functions, documented, last_synced)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   language = excluded.language,
		   hash = excluded.hash,
		   status = excluded.status,
		   functions = excluded.functions,
		   documented = excluded.documented,
		   last_synced = excluded.last_synced
		 RETURNING id`,
		f.Path, f.Language, f.Hash, f.Status, f.Functions, f.Documented, f.LastSynced,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("upsert file %s: %w", f.Path, err)
	}
	return nil
}

// FileByPath returns the ledger row for path, or nil when there is none.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, language, hash, status, functions, documented, last_synced FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.Status, &f.Functions, &f.Documented, &f.LastSynced)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Files returns every ledger row ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, path, language, hash, status, functions, documented, last_synced FROM files ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.Status, &f.Functions, &f.Documented, &f.LastSynced); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFiles removes the ledger rows for paths. Missing paths are ignored.
func (s *Store) DeleteFiles(paths []string) error {
	for len(paths) > 0 {
		n := min(len(paths), maxVars)
		chunk := paths[:n]
		paths = paths[n:]
		_, err := s.db.Exec(
			"DELETE FROM files WHERE path IN ("+placeholderList(len(chunk))+")",
			stringsToArgs(chunk)...,
		)
		if err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
	}
	return nil
}
