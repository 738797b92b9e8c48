// internal/snapshot/storage/store.go
package storage

import (
    "fmt"
    "time"

    "duck/internal/snapshot"
    "duck/internal/storage"

    "github.com/dgraph-io/badger/v4"
)

// Store persists snapshots in badger, one key per commit.
type Store struct {
    store *storage.BadgerStore
}

func NewStore(db *badger.DB) *Store {
    return &Store{
        store: storage.NewBadgerStore(db, "snapshot"),
    }
}

// snapshotEntity wraps snapshot.Snapshot to implement storage.Entity
type snapshotEntity struct {
    *snapshot.Snapshot
}

func (s *snapshotEntity) GetID() string {
    return s.CommitID
}

func validate(s *snapshot.Snapshot) error {
    if s.CommitID == "" {
        return fmt.Errorf("commit id is required")
    }
    for path, hash := range s.Files {
        if path == "" {
            return fmt.Errorf("empty file path")
        }
        if hash == "" {
            return fmt.Errorf("missing content hash for %s", path)
        }
    }
    return nil
}

func (s *Store) Create(snap *snapshot.Snapshot) error {
    if err := validate(snap); err != nil {
        return fmt.Errorf("invalid snapshot: %w", err)
    }

    if snap.CreatedAt.IsZero() {
        snap.CreatedAt = time.Now().UTC()
    }
    if snap.Files == nil {
        snap.Files = map[string]string{}
    }

    return s.store.Create(&snapshotEntity{Snapshot: snap})
}

func (s *Store) Get(commitID string) (*snapshot.Snapshot, error) {
    var entity snapshotEntity
    entity.Snapshot = &snapshot.Snapshot{}

    if err := s.store.Get(commitID, &entity); err != nil {
        return nil, fmt.Errorf("getting snapshot: %w", err)
    }
    if entity.Files == nil {
        entity.Files = map[string]string{}
    }

    return entity.Snapshot, nil
}

func (s *Store) List() ([]*snapshot.Snapshot, error) {
    var snaps []*snapshot.Snapshot
    if err := s.store.List(&snaps); err != nil {
        return nil, fmt.Errorf("listing snapshots: %w", err)
    }
    return snaps, nil
}

// IDs returns the commit ids of all stored snapshots without decoding them.
func (s *Store) IDs() ([]string, error) {
    ids, err := s.store.IDs()
    if err != nil {
        return nil, fmt.Errorf("listing snapshot ids: %w", err)
    }
    return ids, nil
}
