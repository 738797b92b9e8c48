// internal/repo/commit.go
package repo

import (
	"fmt"

	"duck/internal/change"
	"duck/internal/config"
	"duck/internal/content"
	"duck/internal/diff"
	"duck/internal/history"
	"duck/internal/snapshot"
	"duck/internal/validation"
	"duck/shared/utils"

	"go.uber.org/zap"
)

// Commit records the working tree as a new commit on top of HEAD.
//
// The tree is stored in the safe and as a snapshot before the history is
// appended; writing the log file is the commit point. If that write fails the
// in-memory history is rolled back and the orphaned snapshot is never
// referenced.
func (r *Repository) Commit(message string, opts CommitOptions) (history.Commit, error) {
	message, err := validation.Message(message)
	if err != nil {
		return history.Commit{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.headSnapshot()
	if err != nil {
		return history.Commit{}, err
	}

	files, err := r.scan()
	if err != nil {
		return history.Commit{}, err
	}

	tree := make(map[string]string, len(files))
	changes := make(map[string]*change.Record)
	dirty := false

	for _, path := range utils.UnionKeys(head.Files, files) {
		oldHash := head.Files[path]
		file, exists := files[path]
		if exists {
			tree[path] = file.Hash
		}
		if oldHash == file.Hash {
			continue
		}
		dirty = true

		oldLines, err := content.Lines(r.Safe, oldHash)
		if err != nil {
			return history.Commit{}, err
		}
		var newLines []string
		if exists {
			if _, err := r.Safe.Store(path, file.Content); err != nil {
				return history.Commit{}, fmt.Errorf("storing %s: %w", path, err)
			}
			newLines = diff.SplitLines(file.Content)
		}

		if rec := change.Build(oldLines, newLines); !rec.Empty() {
			changes[path] = rec
		}
	}

	if !dirty && !opts.AllowEmpty {
		return history.Commit{}, ErrNothingToCommit
	}

	id, err := history.NewID()
	if err != nil {
		return history.Commit{}, err
	}

	entry := history.NewEntry(message, head.Paths(), utils.SortedKeys(files), changes)

	if err := r.Snapshots.Create(&snapshot.Snapshot{CommitID: id, Files: tree}); err != nil {
		return history.Commit{}, fmt.Errorf("storing tree: %w", err)
	}

	prevHead := r.history.Head
	if err := r.history.Append(id, entry); err != nil {
		return history.Commit{}, err
	}
	if err := history.Save(config.LogPath(r.Root), r.history); err != nil {
		r.rollback(id, prevHead)
		return history.Commit{}, err
	}

	r.Logger.Info("Recorded commit",
		zap.String("id", id),
		zap.Int("files", len(entry.NewFiles)),
		zap.Int("changed", len(changes)))

	return history.Commit{ID: id, Entry: entry}, nil
}

func (r *Repository) rollback(id, prevHead string) {
	r.history.Timeline = r.history.Timeline[:len(r.history.Timeline)-1]
	delete(r.history.Commits, id)
	r.history.Head = prevHead
}
