package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgerRepo(t *testing.T) *BadgerRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerRepository(db)
}

func TestBadger_CreateGetList(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		u, err := repo.Create(ctx, &models.User{ID: "id-" + name, UserName: name, Descriptor: "aa:bb:cc"})
		require.NoError(t, err)
		assert.False(t, u.CreatedAt.IsZero())
	}

	got, err := repo.GetUserByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "id-bob", got.ID)
	assert.Equal(t, "aa:bb:cc", got.Descriptor)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].UserName)
	assert.Equal(t, "bob", list[1].UserName)
	assert.Equal(t, "carol", list[2].UserName)
}

func TestBadger_DuplicateUsername(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{ID: "1", UserName: "alice", Descriptor: "x"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{ID: "2", UserName: "alice", Descriptor: "y"})
	assert.ErrorIs(t, err, common.ErrorUsernameTaken)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID, "first registration must win")
}

func TestBadger_ConcurrentRegistrationsOneWins(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, &models.User{ID: "id", UserName: "alice", Descriptor: "x"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrorUsernameTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestBadger_NotFound(t *testing.T) {
	repo := newBadgerRepo(t)
	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBadger_ListEmpty(t *testing.T) {
	repo := newBadgerRepo(t)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
