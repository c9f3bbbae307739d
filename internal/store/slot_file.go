package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot keeps the slot in a single JSON file under the data directory.
type FileSlot struct {
	Path string
}

var _ Slot = (*FileSlot)(nil)

func NewFileSlot(dataDir string) *FileSlot {
	return &FileSlot{Path: filepath.Join(dataDir, CollectionKey+".json")}
}

func (s *FileSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return data, nil
}

// Write replaces the file atomically: readers see the old or the new
// content, never a partial write.
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+CollectionKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileSlot) Clear(ctx context.Context) error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.Path, err)
	}
	return nil
}
