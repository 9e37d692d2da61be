package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

var (
	ErrNotFound          = errors.New("override not found")
	ErrConflict          = errors.New("override already exists")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Store persists sitemap overrides so they can be replayed on every
// generated sitemap.
type Store interface {
	Initialize() error
	Close() error

	// ListOverrides returns overrides in the order they were created.
	ListOverrides(ctx context.Context) ([]*models.Override, error)
	// GetOverride returns nil, nil when id does not exist.
	GetOverride(ctx context.Context, id uuid.UUID) (*models.Override, error)
	CreateOverride(ctx context.Context, override *models.Override) error
	DeleteOverride(ctx context.Context, id uuid.UUID) error
}

// New opens the store for driver ("sqlite3" or "postgres").
func New(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return NewSQLiteStore(dsn)
	case "postgres", "postgresql":
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
