// Package bytestore provides the local filesystem implementation of the
// library's byte storage.
package bytestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure Local implements the interface.
var _ driven.ByteStore = (*Local)(nil)

// Local stores library files in a single directory on disk.
type Local struct {
	dir string
}

// NewLocal creates a byte store rooted at dir, creating it if needed.
// If dir is empty, defaults to ~/.dockeep/library.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".dockeep", "library")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	return &Local{dir: dir}, nil
}

// Dir returns the library directory.
func (l *Local) Dir() string {
	return l.dir
}

// Copy brings external bytes into the library under storedName.
func (l *Local) Copy(_ context.Context, sourcePath, storedName string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	target := filepath.Join(l.dir, storedName)
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating stored file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return "", fmt.Errorf("copying bytes: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing stored file: %w", err)
	}

	return target, nil
}

// Move renames a stored file. Fails with domain.ErrRenameCollision when
// the target name is already taken.
func (l *Local) Move(_ context.Context, storedPath, newName string) (string, error) {
	target := filepath.Join(l.dir, newName)
	if target == storedPath {
		return storedPath, nil
	}

	if _, err := os.Stat(target); err == nil {
		return "", domain.ErrRenameCollision
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking target: %w", err)
	}

	if err := os.Rename(storedPath, target); err != nil {
		return "", fmt.Errorf("renaming: %w", err)
	}
	return target, nil
}

// Delete removes a stored file.
func (l *Local) Delete(_ context.Context, storedPath string) error {
	if err := os.Remove(storedPath); err != nil {
		return fmt.Errorf("removing stored file: %w", err)
	}
	return nil
}

// List returns the stored paths currently present in the library.
func (l *Local) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading library directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, entry.Name()))
	}
	return paths, nil
}

// Size returns the byte size of a stored file.
func (l *Local) Size(_ context.Context, storedPath string) (int64, error) {
	info, err := os.Stat(storedPath)
	if err != nil {
		return 0, fmt.Errorf("stat stored file: %w", err)
	}
	return info.Size(), nil
}
