// Package storage is the blob store for avatars and task documents.
// Blobs are addressed by the relative path returned from Save.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists opaque blobs and retrieves them by path.
type Store interface {
	// Save writes the blob and returns the path it is stored under.
	Save(r io.Reader, ext string) (string, error)
	// Delete removes a stored blob.
	Delete(path string) error
}

// DiskStore keeps blobs as files under a root directory, one generated
// name per blob so uploads never collide.
type DiskStore struct {
	Root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(homeDir, ".taskboard", "uploads")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{Root: root}, nil
}

func (s *DiskStore) Save(r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + ext
	fullPath := filepath.Join(s.Root, name)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Delete(path string) error {
	return os.Remove(filepath.Join(s.Root, path))
}
