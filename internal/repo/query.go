package repo

import (
	"fmt"

	"duck/internal/content"
	"duck/internal/errors"
	"duck/internal/history"
	"duck/internal/validation"
)

// Log returns every commit in the order it was recorded.
func (r *Repository) Log() []history.Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Entries()
}

// Show resolves ref ("HEAD", an id or an id prefix) to a commit.
func (r *Repository) Show(ref string) (history.Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.history.Resolve(ref)
	if err != nil {
		return history.Commit{}, err
	}
	entry, err := r.history.Get(id)
	if err != nil {
		return history.Commit{}, err
	}
	return history.Commit{ID: id, Entry: entry}, nil
}

// Reconstruct returns the lines of path as recorded by the commit ref.
func (r *Repository) Reconstruct(ref, path string) ([]string, error) {
	if err := validation.Path(path); err != nil {
		return nil, err
	}

	c, err := r.Show(ref)
	if err != nil {
		return nil, err
	}

	snap, err := r.Snapshots.Get(c.ID)
	if err != nil {
		return nil, err
	}
	hash, ok := snap.Files[path]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("%s does not exist in commit %s", path, c.ID))
	}

	return content.Lines(r.Safe, hash)
}

// ObjectStats summarizes the objects referenced by stored snapshots.
type ObjectStats struct {
	Objects    int
	Compressed int
	Size       int64
	StoredSize int64
}

// Stats totals the size of every distinct object referenced by a snapshot.
func (r *Repository) Stats() (ObjectStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snaps, err := r.Snapshots.List()
	if err != nil {
		return ObjectStats{}, err
	}

	var stats ObjectStats
	seen := make(map[string]bool)
	for _, snap := range snaps {
		for _, hash := range snap.Files {
			if seen[hash] {
				continue
			}
			seen[hash] = true

			meta, err := r.Safe.Meta(hash)
			if err != nil {
				return ObjectStats{}, fmt.Errorf("object %s: %w", hash, err)
			}
			stats.Objects++
			stats.Size += meta.Size
			stats.StoredSize += meta.StoredSize
			if meta.Compressed {
				stats.Compressed++
			}
		}
	}
	return stats, nil
}
