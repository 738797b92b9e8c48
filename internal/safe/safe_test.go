package safe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"duck/shared/utils"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSafe(t *testing.T) *Safe {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, Options{
		Root:        t.TempDir(),
		CacheSize:   16,
		Compression: DefaultCompressionOptions(),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSafe_StoreGet(t *testing.T) {
	s := setupTestSafe(t)
	content := []byte("hello\nworld\n")

	hash, err := s.Store("hello.txt", content)
	require.NoError(t, err)
	assert.Equal(t, utils.HashContent(content), hash)

	got, err := s.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	exists, err := s.Exists(hash)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = os.Stat(filepath.Join(s.root, hash[:2], hash[2:]))
	assert.NoError(t, err)
}

func TestSafe_StoreEmpty(t *testing.T) {
	s := setupTestSafe(t)

	hash, err := s.Store("empty", nil)
	require.NoError(t, err)

	got, err := s.Get(hash)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSafe_Dedup(t *testing.T) {
	s := setupTestSafe(t)
	content := []byte("same")

	first, err := s.Store("a", content)
	require.NoError(t, err)
	second, err := s.Store("b", content)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	meta, err := s.Meta(first)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), meta.RefCount)
}

func TestSafe_Compression(t *testing.T) {
	s := setupTestSafe(t)
	content := bytes.Repeat([]byte("line of text\n"), 500)

	hash, err := s.Store("big.txt", content)
	require.NoError(t, err)

	meta, err := s.Meta(hash)
	require.NoError(t, err)
	assert.True(t, meta.Compressed)
	assert.Less(t, meta.StoredSize, meta.Size)

	require.NoError(t, s.Verify(hash))
	got, err := s.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSafe_SkipsCompressedExtensions(t *testing.T) {
	s := setupTestSafe(t)
	content := bytes.Repeat([]byte("x"), 4096)

	hash, err := s.Store("archive.zip", content)
	require.NoError(t, err)

	meta, err := s.Meta(hash)
	require.NoError(t, err)
	assert.False(t, meta.Compressed)
}

func TestSafe_SmallContentNotCompressed(t *testing.T) {
	s := setupTestSafe(t)

	hash, err := s.Store("small.txt", []byte("tiny"))
	require.NoError(t, err)

	meta, err := s.Meta(hash)
	require.NoError(t, err)
	assert.False(t, meta.Compressed)
}

func TestSafe_GetMissing(t *testing.T) {
	s := setupTestSafe(t)

	_, err := s.Get(utils.HashContent([]byte("absent")))
	assert.ErrorIs(t, err, ErrContentNotFound)

	exists, err := s.Exists(utils.HashContent([]byte("absent")))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSafe_InvalidHash(t *testing.T) {
	s := setupTestSafe(t)

	_, err := s.Get("not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = s.Exists("zz")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestSafe_VerifyDetectsCorruption(t *testing.T) {
	s := setupTestSafe(t)

	hash, err := s.Store("f.txt", []byte("original"))
	require.NoError(t, err)

	path := filepath.Join(s.root, hash[:2], hash[2:])
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))

	err = s.Verify(hash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{Root: t.TempDir()})
	assert.Error(t, err)

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, Options{})
	assert.Error(t, err)
}
