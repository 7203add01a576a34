package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrCacheNotFound means there is no cache file at the expected path. It is
// not a decoding failure: PCSX2 may simply never have scanned a library.
var ErrCacheNotFound = errors.New("game list cache not found")

// DefaultCachePath returns the location PCSX2 writes its game list cache to.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "PCSX2", "cache", "gamelist.cache"), nil
}

// ReadCache returns the raw contents of the cache file at path.
func ReadCache(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCacheNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading game list cache: %w", err)
	}
	return data, nil
}
