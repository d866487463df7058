package repomanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BadgerCreatesDirectoryAndPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "faceauth")
	cfg := &config.Config{StorageBackend: config.StorageBadger, BadgerPath: dir}
	ctx := context.Background()

	m, err := New(ctx, cfg)
	require.NoError(t, err)

	_, err = m.Users().Create(ctx, &models.User{ID: "1", UserName: "alice", Descriptor: "aa:bb:cc"})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	m, err = New(ctx, cfg)
	require.NoError(t, err)
	defer m.Close()

	u, err := m.Users().GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc", u.Descriptor)
}
