// Package history holds the append-only commit log of a repository.
package history

import (
	"fmt"

	"duck/internal/change"
	"duck/internal/errors"

	"github.com/google/uuid"
)

// CommitEntry is one recorded commit. It is never modified after it has been
// appended to a History.
type CommitEntry struct {
	Message  string                    `json:"message"`
	OldFiles []string                  `json:"old_files"`
	NewFiles []string                  `json:"new_files"`
	Changes  map[string]*change.Record `json:"changes"`
}

// History is the ordered log of commits. Timeline is the canonical order;
// Commits is a lookup index over it.
type History struct {
	Head     string                  `json:"head"`
	Timeline []string                `json:"timeline"`
	Commits  map[string]*CommitEntry `json:"commits"`
}

// New returns an empty history.
func New() *History {
	return &History{
		Head:     "",
		Timeline: []string{},
		Commits:  make(map[string]*CommitEntry),
	}
}

// NewID returns a fresh commit identifier. Identifiers are UUIDv7 strings, so
// ones generated later sort after earlier ones.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating commit id: %w", err)
	}
	return id.String(), nil
}

// NewEntry assembles a commit entry with empty collections instead of nil ones.
func NewEntry(message string, oldFiles, newFiles []string, changes map[string]*change.Record) *CommitEntry {
	if oldFiles == nil {
		oldFiles = []string{}
	}
	if newFiles == nil {
		newFiles = []string{}
	}
	if changes == nil {
		changes = make(map[string]*change.Record)
	}
	return &CommitEntry{
		Message:  message,
		OldFiles: oldFiles,
		NewFiles: newFiles,
		Changes:  changes,
	}
}

// Append records entry under id and moves Head to it.
func (h *History) Append(id string, entry *CommitEntry) error {
	if id == "" {
		return errors.ValidationError("commit id cannot be empty", nil)
	}
	if entry == nil {
		return errors.ValidationError("commit entry cannot be nil", nil)
	}
	if _, exists := h.Commits[id]; exists {
		return errors.Conflict(fmt.Sprintf("commit already exists: %s", id))
	}

	if h.Commits == nil {
		h.Commits = make(map[string]*CommitEntry)
	}
	h.Timeline = append(h.Timeline, id)
	h.Commits[id] = entry
	h.Head = id
	return nil
}

// Get returns the entry recorded under id.
func (h *History) Get(id string) (*CommitEntry, error) {
	entry, ok := h.Commits[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("commit not found: %s", id))
	}
	return entry, nil
}

// HeadEntry returns the most recent entry, or nil when the history is empty.
func (h *History) HeadEntry() *CommitEntry {
	if h.Head == "" {
		return nil
	}
	return h.Commits[h.Head]
}

// Len returns the number of recorded commits.
func (h *History) Len() int {
	return len(h.Timeline)
}

// Empty reports whether no commit has been recorded yet.
func (h *History) Empty() bool {
	return h.Head == ""
}

// Commit pairs an identifier with its entry.
type Commit struct {
	ID    string
	Entry *CommitEntry
}

// Entries returns the commits in timeline order.
func (h *History) Entries() []Commit {
	out := make([]Commit, 0, len(h.Timeline))
	for _, id := range h.Timeline {
		out = append(out, Commit{ID: id, Entry: h.Commits[id]})
	}
	return out
}

// Resolve maps "HEAD", a full id or a unique id prefix to a commit id.
func (h *History) Resolve(ref string) (string, error) {
	if ref == "" || ref == "HEAD" {
		if h.Head == "" {
			return "", errors.NotFound("no commits yet")
		}
		return h.Head, nil
	}
	if _, ok := h.Commits[ref]; ok {
		return ref, nil
	}

	var match string
	for _, id := range h.Timeline {
		if len(ref) <= len(id) && id[:len(ref)] == ref {
			if match != "" {
				return "", errors.ValidationError(fmt.Sprintf("ambiguous commit prefix: %s", ref), nil)
			}
			match = id
		}
	}
	if match == "" {
		return "", errors.NotFound(fmt.Sprintf("commit not found: %s", ref))
	}
	return match, nil
}

// Validate checks that Timeline, Commits and Head agree with each other.
func (h *History) Validate() error {
	if len(h.Timeline) != len(h.Commits) {
		return fmt.Errorf("timeline has %d commits, index has %d", len(h.Timeline), len(h.Commits))
	}
	seen := make(map[string]bool, len(h.Timeline))
	for _, id := range h.Timeline {
		if seen[id] {
			return fmt.Errorf("commit %s appears twice in timeline", id)
		}
		seen[id] = true
		if _, ok := h.Commits[id]; !ok {
			return fmt.Errorf("commit %s missing from index", id)
		}
	}
	if len(h.Timeline) == 0 {
		if h.Head != "" {
			return fmt.Errorf("head %s set on empty history", h.Head)
		}
		return nil
	}
	if last := h.Timeline[len(h.Timeline)-1]; h.Head != last {
		return fmt.Errorf("head %s is not the last commit %s", h.Head, last)
	}
	return nil
}
