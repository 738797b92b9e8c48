// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DuckDir    = ".duck"
	ConfigFile = "config.json"
	LogFile    = "duck.log.json"
	DBDir      = "db"
	ObjectsDir = "objects"
)

type Config struct {
	Server struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"server"`

	Storage struct {
		CacheSize        int `json:"cache_size"`
		CompressionLevel int `json:"compression_level"` // 1=fastest, 4=best
		MinCompressSize  int `json:"min_compress_size"`
	} `json:"storage"`

	Ignore   []string `json:"ignore"`    // extra path components to skip
	LogLevel string   `json:"log_level"` // debug, info, warn, error
}

// Default returns the configuration written by `duck init`.
func Default() *Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 7420
	c.Storage.CacheSize = 1000
	c.Storage.CompressionLevel = 2
	c.Storage.MinCompressSize = 1024
	c.Ignore = []string{}
	c.LogLevel = "warn"
	return &c
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	config.applyEnv()

	return config, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if level := os.Getenv("DUCK_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DuckPath returns the path to the .duck directory from a root path.
func DuckPath(root string) string {
	return filepath.Join(root, DuckDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, DuckDir, ConfigFile)
}

// LogPath returns the path to the commit history document.
func LogPath(root string) string {
	return filepath.Join(root, DuckDir, LogFile)
}

func DBPath(root string) string {
	return filepath.Join(root, DuckDir, DBDir)
}

func ObjectsPath(root string) string {
	return filepath.Join(root, DuckDir, ObjectsDir)
}

// IsRepository checks if the given path contains a duck repository.
func IsRepository(root string) bool {
	info, err := os.Stat(DuckPath(root))
	return err == nil && info.IsDir()
}

// FindRoot walks up from start looking for a .duck directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a duck repository (or any parent up to %s)", dir)
		}
		dir = parent
	}
}
