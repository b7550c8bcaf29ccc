package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/model"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultTTM().Database
	cfg.Path = filepath.Join(t.TempDir(), "ttm.db")

	b, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.DriverSQLite, b.Driver)
	got, err := b.Store.GetTree(ctx, model.ContentID("missing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unknown database driver")
}
