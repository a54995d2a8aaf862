package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, "HTTP_ADDR", "DB_HOST", "DB_NAME", "EVENT_LOCK_TTL", "OUTBOX_POLL_INTERVAL", "REDIS_HOST", "REDIS_PORT")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "community_ticket", cfg.DB.DBName)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, 2*time.Second, cfg.OutboxInterval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_EnvFile(t *testing.T) {
	unset(t, "DB_HOST", "CHECKOUT_CLEANUP_BATCH")
	t.Setenv("HTTP_ADDR", ":9090")

	path := writeEnvFile(t, `
# local overrides
DB_HOST=db.internal
HTTP_ADDR=:7070
CHECKOUT_CLEANUP_BATCH = 25
not a pair
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 25, cfg.CleanupBatchSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr, "process environment wins over the file")
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))

	assert.NoError(t, err)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("EVENT_LOCK_TTL", "ten seconds")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
