// internal/change/record.go
package change

import (
	"fmt"

	"duck/internal/diff"
)

// Record is the persisted form of a file diff: the added lines keyed by their
// position in the new file and the deleted lines keyed by their position in
// the old file. Common lines are never stored.
type Record struct {
	Add map[int]string `json:"add"`
	Del map[int]string `json:"del"`
}

// Build diffs old against new and keeps only the additions and deletions.
func Build(oldLines, newLines []string) *Record {
	return FromDiff(diff.Diff(oldLines, newLines))
}

// FromDiff projects a diff result onto a Record.
func FromDiff(result *diff.Result) *Record {
	return &Record{
		Add: result.Added,
		Del: result.Deleted,
	}
}

// Empty reports whether the record carries no change.
func (r *Record) Empty() bool {
	return r == nil || (len(r.Add) == 0 && len(r.Del) == 0)
}

// Stats returns the number of added and deleted lines.
func (r *Record) Stats() (added, deleted int) {
	if r == nil {
		return 0, 0
	}
	return len(r.Add), len(r.Del)
}

// Apply rebuilds the new line sequence from the old one. Lines of old that are
// not deleted fill, in order, the positions of the new sequence that are not
// added.
func Apply(oldLines []string, r *Record) ([]string, error) {
	if r == nil {
		r = &Record{}
	}

	for idx, line := range r.Del {
		if idx < 0 || idx >= len(oldLines) {
			return nil, fmt.Errorf("deleted line %d out of range (old has %d lines)", idx, len(oldLines))
		}
		if oldLines[idx] != line {
			return nil, fmt.Errorf("deleted line %d does not match old content", idx)
		}
	}

	kept := make([]string, 0, len(oldLines)-len(r.Del))
	for idx, line := range oldLines {
		if _, deleted := r.Del[idx]; !deleted {
			kept = append(kept, line)
		}
	}

	size := len(kept) + len(r.Add)
	for idx := range r.Add {
		if idx < 0 || idx >= size {
			return nil, fmt.Errorf("added line %d out of range (new has %d lines)", idx, size)
		}
	}

	newLines := make([]string, size)
	k := 0
	for idx := range newLines {
		if line, added := r.Add[idx]; added {
			newLines[idx] = line
			continue
		}
		newLines[idx] = kept[k]
		k++
	}

	return newLines, nil
}
