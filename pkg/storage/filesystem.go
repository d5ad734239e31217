// Package storage persists rendered report artifacts on the local
// filesystem under a single output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore writes report artifacts under a base directory and serves
// retention cleanup over them.
type FileStore struct {
	baseDir string
}

// NewFileStore constructs a FileStore, creating the base directory when
// missing.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory artifacts are written into.
func (fs *FileStore) BaseDir() string {
	return fs.baseDir
}

// Save writes content under the given file name and returns the absolute
// path. Path separators in the name are rejected so artifacts cannot
// escape the base directory.
func (fs *FileStore) Save(name string, content []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	path := filepath.Join(fs.baseDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Open reads back an artifact by name.
func (fs *FileStore) Open(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	content, err := os.ReadFile(filepath.Join(fs.baseDir, name))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return content, nil
}

// Delete removes an artifact, reporting whether it existed.
func (fs *FileStore) Delete(name string) (bool, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false, fmt.Errorf("invalid artifact name %q", name)
	}
	err := os.Remove(filepath.Join(fs.baseDir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete artifact: %w", err)
	}
	return true, nil
}

// CleanupOlderThan removes artifacts whose modification time predates the
// cutoff, returning how many were deleted. Subdirectories are skipped.
func (fs *FileStore) CleanupOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return 0, fmt.Errorf("scan report directory: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(fs.baseDir, entry.Name())); err != nil {
			return removed, fmt.Errorf("delete stale artifact %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
