package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps files on the local filesystem under a base directory, the
// same tree the HTTP server exposes at /uploads.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// BaseDir returns the root the store writes under, for static file serving.
func (l *LocalStore) BaseDir() string {
	return l.baseDir
}

// Abs resolves a canonical relative path to the on-disk location.
func (l *LocalStore) Abs(relPath string) (string, error) {
	canonical, err := CanonicalPath(relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.baseDir, filepath.FromSlash(canonical)), nil
}

func (l *LocalStore) Save(_ context.Context, relPath string, reader io.Reader) (int64, error) {
	abs, err := l.Abs(relPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}

	out, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", relPath, err)
	}
	defer out.Close()

	size, err := io.Copy(out, reader)
	if err != nil {
		os.Remove(abs)
		return 0, fmt.Errorf("failed to write %s: %w", relPath, err)
	}

	return size, nil
}

func (l *LocalStore) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	abs, err := l.Abs(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", relPath, err)
	}
	return f, nil
}

func (l *LocalStore) Delete(_ context.Context, relPath string) error {
	abs, err := l.Abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}
	return nil
}

func (l *LocalStore) DeletePrefix(_ context.Context, relPrefix string) error {
	abs, err := l.Abs(relPrefix)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to delete %s: %w", relPrefix, err)
	}
	return nil
}
