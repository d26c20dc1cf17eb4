package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.SessionSweep)
	assert.Equal(t, "unguarded", cfg.Tickets.Transitions)
	assert.False(t, cfg.Tickets.RequireTechnicianAssignee)
	assert.NotEmpty(t, cfg.SessionSecret, "dev gets a throwaway secret")
	assert.Equal(t, StoragePostgres, cfg.Storage)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "30s")
	t.Setenv("TICKETS_TRANSITIONS", "forward")
	t.Setenv("TICKETS_ALLOW_CLOSED", "true")
	t.Setenv("TICKETS_REFETCH_AFTER_WRITE", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.SessionSweep)
	assert.Equal(t, "forward", cfg.Tickets.Transitions)
	assert.True(t, cfg.Tickets.AllowClosed)
	assert.True(t, cfg.Tickets.RefetchAfterWrite)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadStorage(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE", "memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)

	t.Setenv("STORAGE", "sqlite")
	_, err = Load()
	assert.Error(t, err)
}
