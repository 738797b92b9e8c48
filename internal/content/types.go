package content

import (
	"fmt"

	"duck/internal/diff"
)

// Store is the content-addressed object store file snapshots are kept in.
type Store interface {
	Store(name string, content []byte) (string, error)
	Get(hash string) ([]byte, error)
	Exists(hash string) (bool, error)
}

// Lines loads the object stored under hash and splits it into lines. An empty
// hash stands for a file that does not exist and yields no lines.
func Lines(s Store, hash string) ([]string, error) {
	if hash == "" {
		return nil, nil
	}
	data, err := s.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("loading content %s: %w", hash, err)
	}
	return diff.SplitLines(data), nil
}
