// internal/safe/safe.go
package safe

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"duck/shared/utils"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidHash     = errors.New("invalid content hash")
)

// ContentMeta stores metadata about stored content
type ContentMeta struct {
	Hash       string    `json:"hash"`
	Size       int64     `json:"size"`
	StoredSize int64     `json:"stored_size"`
	RefCount   uint32    `json:"ref_count"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Safe is content-addressed storage for file snapshots. Objects live on disk
// under root, their metadata in badger.
type Safe struct {
	root  string
	db    *badger.DB
	cache *lru.Cache[string, []byte]
	comp  *compressionManager
	mu    sync.Mutex // serialises Store
}

// Options configures Safe behavior
type Options struct {
	Root        string // Root directory path
	CacheSize   int    // Number of items to cache
	Compression CompressionOptions
}

// New creates a new Safe instance
func New(db *badger.DB, opts Options) (*Safe, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}

	if err := os.MkdirAll(opts.Root, 0755); err != nil {
		return nil, fmt.Errorf("creating root directory: %w", err)
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}
	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	comp, err := newCompressionManager(opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("creating compression manager: %w", err)
	}

	return &Safe{
		root:  opts.Root,
		db:    db,
		cache: cache,
		comp:  comp,
	}, nil
}

// Store saves content and returns its hash. name is only used to decide
// whether the object is worth compressing.
func (s *Safe) Store(name string, content []byte) (string, error) {
	if content == nil {
		content = []byte{}
	}
	hash := utils.HashContent(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.getMeta(hash)
	switch {
	case err == nil:
		meta.RefCount++
		if err := s.storeMeta(meta); err != nil {
			return "", fmt.Errorf("incrementing ref count: %w", err)
		}
		return hash, nil
	case !errors.Is(err, ErrContentNotFound):
		return "", fmt.Errorf("checking existence: %w", err)
	}

	data, compressed := s.comp.compress(name, content)

	contentPath := s.contentPath(hash)
	if err := os.MkdirAll(filepath.Dir(contentPath), 0755); err != nil {
		return "", fmt.Errorf("creating content directory: %w", err)
	}
	if err := os.WriteFile(contentPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing content file: %w", err)
	}

	meta = ContentMeta{
		Hash:       hash,
		Size:       int64(len(content)),
		StoredSize: int64(len(data)),
		RefCount:   1,
		Compressed: compressed,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.storeMeta(meta); err != nil {
		os.Remove(contentPath)
		return "", fmt.Errorf("storing metadata: %w", err)
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get retrieves content by hash
func (s *Safe) Get(hash string) ([]byte, error) {
	if !isValidHash(hash) {
		return nil, ErrInvalidHash
	}

	if content, ok := s.cache.Get(hash); ok {
		return content, nil
	}

	meta, err := s.getMeta(hash)
	if err != nil {
		return nil, fmt.Errorf("getting metadata: %w", err)
	}

	content, err := os.ReadFile(s.contentPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}

	if meta.Compressed {
		content, err = s.comp.decompress(content)
		if err != nil {
			return nil, fmt.Errorf("decompressing content: %w", err)
		}
	}

	if utils.HashContent(content) != hash {
		return nil, fmt.Errorf("content hash mismatch for %s", hash)
	}

	s.cache.Add(hash, content)
	return content, nil
}

// Exists checks if content exists
func (s *Safe) Exists(hash string) (bool, error) {
	if !isValidHash(hash) {
		return false, ErrInvalidHash
	}
	if s.cache.Contains(hash) {
		return true, nil
	}

	_, err := s.getMeta(hash)
	if errors.Is(err, ErrContentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Verify re-reads an object from disk, bypassing the cache, and checks its hash.
func (s *Safe) Verify(hash string) error {
	s.cache.Remove(hash)
	_, err := s.Get(hash)
	return err
}

// Meta returns the stored metadata for hash.
func (s *Safe) Meta(hash string) (ContentMeta, error) {
	if !isValidHash(hash) {
		return ContentMeta{}, ErrInvalidHash
	}
	return s.getMeta(hash)
}

// Close releases the compression resources. The database is owned by the caller.
func (s *Safe) Close() {
	s.comp.close()
}

func (s *Safe) contentPath(hash string) string {
	return filepath.Join(s.root, hash[:2], hash[2:])
}

func isValidHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func metaKey(hash string) []byte {
	return []byte(fmt.Sprintf("content:%s", hash))
}

func (s *Safe) storeMeta(meta ContentMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(meta.Hash), data)
	})
}

func (s *Safe) getMeta(hash string) (ContentMeta, error) {
	var meta ContentMeta

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(hash))
		if err == badger.ErrKeyNotFound {
			return ErrContentNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})

	return meta, err
}
