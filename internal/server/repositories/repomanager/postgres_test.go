package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestPostgresManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var m RepositoryManager = newPostgresRepositoryManager(db)
	if u := m.Users(); u == nil {
		t.Fatal("Users() nil")
	}
	var _ users.Repository = m.Users()
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := newPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := newPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestClose_ClosesPool(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()

	m := newPostgresRepositoryManager(db)
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNew_Backends(t *testing.T) {
	ctx := context.Background()

	mem, err := New(ctx, &config.Config{StorageBackend: config.StorageMemory})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := mem.(*InMemoryRepositoryManager); !ok {
		t.Fatalf("unexpected manager %T", mem)
	}
	_ = mem.Close()

	bdg, err := New(ctx, &config.Config{StorageBackend: config.StorageBadger, BadgerPath: ""})
	if err != nil {
		t.Fatalf("badger backend: %v", err)
	}
	if _, ok := bdg.(*BadgerRepositoryManager); !ok {
		t.Fatalf("unexpected manager %T", bdg)
	}
	if err := bdg.Close(); err != nil {
		t.Fatalf("badger close: %v", err)
	}

	if _, err := New(ctx, &config.Config{StorageBackend: "mongo"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBadgerManager_OnDisk(t *testing.T) {
	m, err := NewBadgerRepositoryManager(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	list, err := m.Users().List(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("List on empty db: %v %v", list, err)
	}
}
