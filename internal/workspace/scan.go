// internal/workspace/scan.go
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"duck/shared/utils"

	"go.uber.org/zap"
)

// File is one tracked file of the working tree.
type File struct {
	Path    string // slash-separated, relative to the root
	Hash    string
	Content []byte
	Size    int64
	ModTime time.Time
}

// Scan walks root and reads every regular file that ig does not exclude.
// Unreadable files are logged and skipped.
func Scan(root string, ig *Ignore, logger *zap.Logger) (map[string]File, error) {
	if ig == nil {
		ig = NewIgnore(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	files := make(map[string]File)
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			logger.Warn("Failed to get relative path",
				zap.String("path", p),
				zap.Error(err))
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && ig.Match(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if ig.Match(rel) || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Failed to get file info",
				zap.String("path", rel),
				zap.Error(err))
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("Failed to read file",
				zap.String("path", rel),
				zap.Error(err))
			return nil
		}

		files[rel] = File{
			Path:    rel,
			Hash:    utils.HashContent(content),
			Content: content,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}

	return files, nil
}
