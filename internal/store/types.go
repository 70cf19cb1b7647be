package store

import "time"

// File statuses recorded in the ledger.
const (
	StatusUpdated   = "updated"   // comments were written
	StatusUnchanged = "unchanged" // nothing to write
	StatusInvalid   = "invalid"   // rewrite failed the syntax check; original kept
	StatusFailed    = "failed"    // generation or I/O error
)

// File is one ledger row: the last content hash docsync saw for a path and
// what happened to it.
type File struct {
	ID         int64
	Path       string
	Language   string
	Hash       string
	Status     string
	Functions  int
	Documented int
	LastSynced time.Time
}

// Comment is a cached generator output for one function body.
type Comment struct {
	ID        int64
	FuncHash  string
	Generator string
	Language  string
	Text      string
	CreatedAt time.Time
}

// Run summarizes one sync invocation.
type Run struct {
	ID         string
	Generator  string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt *time.Time
	Files      int
	Updated    int
	Skipped    int
	Failed     int
	Comments   int
}
