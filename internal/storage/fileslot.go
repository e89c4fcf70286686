package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileSlot struct {
	dir string
}

// NewFileSlot returns a Slot that keeps one file per key under dir. Writes go
// to a temporary file that is renamed over the target, so a crash mid-write
// leaves the previous value intact.
func NewFileSlot(dir string) (Slot, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating slot directory: %w", err)
	}
	return &fileSlot{dir: dir}, nil
}

func (s *fileSlot) valuePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *fileSlot) Get(_ context.Context, key string) (string, bool, error) {
	path, err := s.valuePath(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *fileSlot) Put(_ context.Context, key, value string) error {
	path, err := s.valuePath(key)
	if err != nil {
		return err
	}

	unlock, err := lockFile(filepath.Join(s.dir, "."+key+".lock"))
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing slot %s: creating temp file: %w", key, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing slot %s: syncing: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing slot %s: closing: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing slot %s: renaming: %w", key, err)
	}
	committed = true
	return nil
}

func (s *fileSlot) Close() error { return nil }
