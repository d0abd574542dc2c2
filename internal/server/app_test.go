package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/rms/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_RejectsSharedSecret(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.RefreshTokenSecret = c.AccessTokenSecret

	called := false
	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		called = true
		return nil, errors.New("unreachable")
	}

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrSharedSecret)
	assert.False(t, called, "no connection is opened for an invalid config")
}

func TestNewApp_RejectsDefaultSecrets(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()

	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		t.Fatal("openDB must not be called")
		return nil, nil
	}

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, config.ErrDefaultSecret)
}

func TestNewApp_DBError(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.AccessTokenSecret, c.RefreshTokenSecret = "a-key", "r-key"

	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		assert.Equal(t, c.DatabaseDSN, dsn)
		return nil, errors.New("connection refused")
	}

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}
