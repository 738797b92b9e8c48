// internal/snapshot/types.go
package snapshot

import (
	"sort"
	"time"
)

// Snapshot is the tree recorded by a commit: every file path present after
// the commit mapped to the hash of its content in the safe.
type Snapshot struct {
	CommitID  string            `json:"commit_id"`
	Files     map[string]string `json:"files"`
	CreatedAt time.Time         `json:"created_at"`
}

// Empty is the tree before the first commit.
func Empty() *Snapshot {
	return &Snapshot{Files: map[string]string{}}
}

// Paths returns the file paths of the snapshot in sorted order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Box defines how snapshots are stored and retrieved
type Box interface {
	Create(s *Snapshot) error
	Get(commitID string) (*Snapshot, error)
	List() ([]*Snapshot, error)
	IDs() ([]string, error)
}
