package repomanager

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/faceauth/internal/filex"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/users"
)

// BadgerRepositoryManager vends repositories backed by an embedded badger
// database.
type BadgerRepositoryManager struct {
	db    *badger.DB
	users users.Repository
}

// NewBadgerRepositoryManager opens (or creates) the database at path. An
// empty path opens an in-memory database.
func NewBadgerRepositoryManager(path string) (*BadgerRepositoryManager, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if path != "" {
		dir, err := filex.EnsureDir(path)
		if err != nil {
			return nil, fmt.Errorf("badger dir error: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open error: %w", err)
	}

	return &BadgerRepositoryManager{db: db, users: users.NewBadgerRepository(db)}, nil
}

func (m *BadgerRepositoryManager) Users() users.Repository {
	return m.users
}

// RunMigrations is a no-op: badger is schemaless.
func (m *BadgerRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *BadgerRepositoryManager) Close() error {
	return m.db.Close()
}
