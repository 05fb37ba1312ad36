package store

import (
	"context"
	"fmt"

	"github.com/goroku-app/goroku/internal/ports"
)

// Backend identifies a quote store implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config selects and configures the persistence backend.
type Config struct {
	Backend Backend

	// Path is the user quote file (file backend) or database file
	// (sqlite backend).
	Path string

	// BasePath is the optional read-only curated quote file, used only
	// by the file backend.
	BasePath string

	// DSN is the Postgres connection string, used only by the postgres
	// backend.
	DSN string
}

// Store is the full surface every backend provides.
type Store interface {
	ports.QuoteStore
	ports.HealthChecker
	Close() error
}

// Open constructs the backend named by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		fs, err := NewFileStore(cfg.Path, cfg.BasePath)
		if err != nil {
			return nil, err
		}
		return fileStoreCloser{fs}, nil
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// fileStoreCloser gives FileStore the no-op Close the interface needs.
type fileStoreCloser struct {
	*FileStore
}

func (fileStoreCloser) Close() error { return nil }
