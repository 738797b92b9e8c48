package repo

import (
	stderrors "errors"
	"fmt"
	"slices"

	"duck/internal/change"
	"duck/internal/content"
	"duck/internal/snapshot"
	"duck/shared/utils"

	"go.uber.org/zap"
)

// Verify checks that the history replays onto the stored trees: every commit
// has a snapshot, its file lists match the trees before and after it, every
// object re-hashes correctly and applying each change record to the previous
// version of a file yields the recorded one. All problems found are joined.
func (r *Repository) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.history.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	var problems []error
	verified := make(map[string]bool)
	prev := snapshot.Empty()

	for _, c := range r.history.Entries() {
		snap, err := r.Snapshots.Get(c.ID)
		if err != nil {
			problems = append(problems, fmt.Errorf("commit %s: %w", c.ID, err))
			prev = snapshot.Empty()
			continue
		}

		if !slices.Equal(c.Entry.OldFiles, prev.Paths()) {
			problems = append(problems, fmt.Errorf("commit %s: old_files do not match the previous tree", c.ID))
		}
		if !slices.Equal(c.Entry.NewFiles, snap.Paths()) {
			problems = append(problems, fmt.Errorf("commit %s: new_files do not match its tree", c.ID))
		}

		for _, hash := range snap.Files {
			if verified[hash] {
				continue
			}
			verified[hash] = true
			if err := r.Safe.Verify(hash); err != nil {
				problems = append(problems, fmt.Errorf("object %s: %w", hash, err))
			}
		}

		for _, path := range utils.UnionKeys(prev.Files, snap.Files) {
			if err := r.replay(prev.Files[path], snap.Files[path], c.Entry.Changes[path]); err != nil {
				problems = append(problems, fmt.Errorf("commit %s, %s: %w", c.ID, path, err))
			}
		}

		prev = snap
	}

	if ids, err := r.Snapshots.IDs(); err != nil {
		problems = append(problems, err)
	} else {
		for _, id := range ids {
			if _, ok := r.history.Commits[id]; !ok {
				r.Logger.Warn("Snapshot not referenced by history", zap.String("commit", id))
			}
		}
	}

	r.Logger.Debug("Verified repository",
		zap.Int("commits", r.history.Len()),
		zap.Int("objects", len(verified)),
		zap.Int("problems", len(problems)))

	return stderrors.Join(problems...)
}

func (r *Repository) replay(oldHash, newHash string, rec *change.Record) error {
	if oldHash == newHash {
		if !rec.Empty() {
			return fmt.Errorf("change recorded for an unchanged file")
		}
		return nil
	}

	oldLines, err := content.Lines(r.Safe, oldHash)
	if err != nil {
		return err
	}
	newLines, err := content.Lines(r.Safe, newHash)
	if err != nil {
		return err
	}

	got, err := change.Apply(oldLines, rec)
	if err != nil {
		return err
	}
	if !slices.Equal(got, newLines) {
		return fmt.Errorf("recorded change does not reproduce the stored file")
	}
	return nil
}
