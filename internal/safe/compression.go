// internal/safe/compression.go
package safe

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressionOptions configures compression behavior
type CompressionOptions struct {
	// Minimum size in bytes before compressing
	MinSize int
	// zstd level passed to EncoderLevelFromZstd
	Level int
	// File extensions to skip compression for
	SkipExtensions []string
}

// DefaultCompressionOptions provides sensible defaults
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		MinSize: 1024, // 1KB
		Level:   2,
		SkipExtensions: []string{
			".zip", ".gz", ".zst", ".xz", ".bz2",
			".png", ".jpg", ".jpeg", ".gif", ".webp",
			".mp3", ".mp4", ".avi", ".mkv",
			".pdf", ".docx", ".xlsx",
		},
	}
}

// compressionManager wraps a shared encoder and decoder. EncodeAll and
// DecodeAll are safe for concurrent use, so no pooling is needed.
type compressionManager struct {
	opts CompressionOptions
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

func newCompressionManager(opts CompressionOptions) (*compressionManager, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	return &compressionManager{opts: opts, enc: enc, dec: dec}, nil
}

// shouldCompress determines if content should be compressed
func (cm *compressionManager) shouldCompress(name string, size int) bool {
	if size < cm.opts.MinSize {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, skipExt := range cm.opts.SkipExtensions {
		if ext == skipExt {
			return false
		}
	}

	return true
}

// compress returns the encoded content and whether compression was applied.
// Compression is dropped when it does not make the object smaller.
func (cm *compressionManager) compress(name string, content []byte) ([]byte, bool) {
	if !cm.shouldCompress(name, len(content)) {
		return content, false
	}

	out := cm.enc.EncodeAll(content, make([]byte, 0, len(content)/2))
	if len(out) >= len(content) {
		return content, false
	}
	return out, true
}

func (cm *compressionManager) decompress(content []byte) ([]byte, error) {
	out, err := cm.dec.DecodeAll(content, nil)
	if err != nil {
		return nil, fmt.Errorf("decoding zstd: %w", err)
	}
	return out, nil
}

func (cm *compressionManager) close() {
	cm.enc.Close()
	cm.dec.Close()
}
