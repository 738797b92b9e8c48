// internal/repo/repo.go
package repo

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"duck/internal/config"
	"duck/internal/errors"
	"duck/internal/history"
	"duck/internal/logging"
	"duck/internal/safe"
	"duck/internal/snapshot"
	snapstore "duck/internal/snapshot/storage"
	"duck/internal/workspace"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ErrNothingToCommit is returned by Commit when the working tree matches HEAD.
var ErrNothingToCommit = stderrors.New("nothing to commit, working tree clean")

// Repository is an opened duck repository: the working tree under Root and
// the state kept in Root/.duck.
type Repository struct {
	Root      string
	Config    *config.Config
	DB        *badger.DB
	Safe      *safe.Safe
	Snapshots snapshot.Box
	Logger    *zap.Logger

	ignore  *workspace.Ignore
	mu      sync.Mutex // guards history and serialises commits
	history *history.History
	closed  bool
}

// Init creates the .duck directory under root with a default configuration
// and an empty history. With force an existing repository is wiped first.
func Init(root string, force bool) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	if config.IsRepository(absRoot) {
		if !force {
			return errors.Conflict(fmt.Sprintf("duck repository already exists in %s", absRoot))
		}
		if err := os.RemoveAll(config.DuckPath(absRoot)); err != nil {
			return fmt.Errorf("removing existing repository: %w", err)
		}
	}

	dirs := []string{
		config.DuckPath(absRoot),
		config.DBPath(absRoot),
		config.ObjectsPath(absRoot),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := config.Default().Save(config.ConfigPath(absRoot)); err != nil {
		return err
	}

	return history.InitFile(config.LogPath(absRoot))
}

// Open finds the repository containing path and opens its stores.
func Open(path string, logger *zap.Logger) (*Repository, error) {
	logger = logging.OrNop(logger)

	root, err := config.FindRoot(path)
	if err != nil {
		return nil, errors.NotRepository(err.Error())
	}

	cfg, err := config.LoadOrDefault(config.ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	h, err := history.Load(config.LogPath(root))
	if err != nil {
		return nil, err
	}

	db, err := InitDB(config.DBPath(root))
	if err != nil {
		return nil, err
	}

	compression := safe.DefaultCompressionOptions()
	compression.Level = cfg.Storage.CompressionLevel
	compression.MinSize = cfg.Storage.MinCompressSize

	contentSafe, err := safe.New(db, safe.Options{
		Root:        config.ObjectsPath(root),
		CacheSize:   cfg.Storage.CacheSize,
		Compression: compression,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing content safe: %w", err)
	}

	logger.Debug("Opened repository",
		zap.String("root", root),
		zap.Int("commits", h.Len()))

	return &Repository{
		Root:      root,
		Config:    cfg,
		DB:        db,
		Safe:      contentSafe,
		Snapshots: snapstore.NewStore(db),
		Logger:    logger,
		ignore:    workspace.NewIgnore(cfg.Ignore),
		history:   h,
	}, nil
}

// Ignore returns the matcher used to exclude paths from commits.
func (r *Repository) Ignore() *workspace.Ignore {
	return r.ignore
}

// Head returns the id of the latest commit, or "" before the first one.
func (r *Repository) Head() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Head
}

// Close ensures proper cleanup of resources
func (r *Repository) Close() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	if r.Safe != nil {
		r.Safe.Close()
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}

	return nil
}

// headSnapshot returns the tree recorded by HEAD. Callers hold r.mu.
func (r *Repository) headSnapshot() (*snapshot.Snapshot, error) {
	if r.history.Empty() {
		return snapshot.Empty(), nil
	}
	snap, err := r.Snapshots.Get(r.history.Head)
	if err != nil {
		return nil, fmt.Errorf("loading HEAD tree: %w", err)
	}
	return snap, nil
}

func (r *Repository) scan() (map[string]workspace.File, error) {
	return workspace.Scan(r.Root, r.ignore, r.Logger)
}
