package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// InitFile writes an empty history to path.
func InitFile(path string) error {
	if err := Save(path, New()); err != nil {
		return fmt.Errorf("initializing log file: %w", err)
	}
	return nil
}

// Load reads a history document from path.
func Load(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing log file: %w", err)
	}
	if h.Timeline == nil {
		h.Timeline = []string{}
	}
	if h.Commits == nil {
		h.Commits = make(map[string]*CommitEntry)
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt log file %s: %w", path, err)
	}

	return &h, nil
}

// Save writes h to path. The document is written to a temporary file in the
// same directory and renamed over path, so readers never see a partial log.
func Save(path string, h *History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp log file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing log file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing log file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing log file: %w", err)
	}

	return nil
}
