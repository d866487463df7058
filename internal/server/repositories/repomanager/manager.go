// Package repomanager vends the storage backends of the server behind one
// interface and owns their connections.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// New opens the backend selected by cfg.StorageBackend and runs its
// migrations.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		m, err = NewPostgresRepositoryManager(cfg.DatabaseDSN)
	case config.StorageBadger:
		m, err = NewBadgerRepositoryManager(cfg.BadgerPath)
	case config.StorageMemory:
		m = NewInMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
