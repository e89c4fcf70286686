// Package storage provides the durable key-value slots that hold the
// serialised workflow catalog, plus the codec used to read and write it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// DefaultKey is the slot key the catalog is stored under.
const DefaultKey = "portfolio_workflows"

// ErrInvalidKey is returned when a slot key cannot be stored by a backend.
var ErrInvalidKey = errors.New("invalid slot key")

// Slot is a string-valued durable key-value store. Put replaces the whole
// value atomically: a reader never observes a partially written value.
type Slot interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put overwrites the value for key.
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Open creates the slot selected by cfg. Relative or empty paths are
// resolved against basePath.
func Open(cfg models.StorageConfig, basePath string) (Slot, error) {
	switch cfg.Backend {
	case models.BackendFile, "":
		return NewFileSlot(resolvePath(basePath, cfg.Path, "data"))
	case models.BackendBadger:
		return NewBadgerSlot(resolvePath(basePath, cfg.Path, "folio.badger"))
	case models.BackendSQLite:
		return NewSQLiteSlot(resolvePath(basePath, cfg.Path, "folio.db"))
	case models.BackendRedis:
		return NewRedisSlot(cfg.RedisAddr, "folio:")
	case models.BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("opening slot: unknown storage backend %q", cfg.Backend)
	}
}

func resolvePath(basePath, configured, fallback string) string {
	if configured == "" {
		return filepath.Join(basePath, fallback)
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(basePath, configured)
}
