package repo

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// CommitOptions tunes Commit.
type CommitOptions struct {
	// AllowEmpty records a commit even when the working tree matches HEAD.
	AllowEmpty bool
}

// InitDB initializes and returns a BadgerDB instance
func InitDB(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithNumVersionsToKeep(1). // snapshots and metadata are never rewritten
		WithLoggingLevel(badger.WARNING)
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}
