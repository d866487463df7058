package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_CreateGetList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice"} {
		_, err := repo.Create(ctx, &models.User{ID: "id-" + name, UserName: name, Descriptor: "d-" + name})
		require.NoError(t, err)
	}

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "d-alice", got.Descriptor)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "carol", list[0].UserName, "insertion order")
	assert.Equal(t, "alice", list[1].UserName)

	// callers get copies
	list[0].Descriptor = "mutated"
	again, err := repo.GetUserByLogin(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "d-carol", again.Descriptor)
}

func TestInMemory_DuplicateAndNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "alice"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.User{UserName: "alice"})
	assert.ErrorIs(t, err, common.ErrorUsernameTaken)

	_, err = repo.GetUserByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemory_ConcurrentRegistrationsOneWins(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Create(ctx, &models.User{UserName: "alice"}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}
