package database_test

import (
	"context"
	"testing"
	"time"

	"courtside/database"
	"courtside/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_AppliesPoolSettings(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	db, err := database.NewConnection(context.Background(), testDB.URL, database.PoolSettings{
		MaxConns:        3,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
	})
	require.NoError(t, err)
	defer db.Close()

	cfg := db.Config()
	assert.Equal(t, int32(3), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.MaxConnLifetime)

	require.NoError(t, db.Ping(context.Background()))
}

func TestNewConnection_ZeroSettingsKeepDefaults(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	db, err := database.NewConnection(context.Background(), testDB.URL, database.PoolSettings{})
	require.NoError(t, err)
	defer db.Close()

	assert.Positive(t, db.Config().MaxConns)
}

func TestNewConnection_InvalidURL(t *testing.T) {
	_, err := database.NewConnection(context.Background(), "://not-a-url", database.PoolSettings{})
	assert.Error(t, err)
}
