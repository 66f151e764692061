package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LowStockCritical)
	assert.Equal(t, 10, cfg.LowStockWarning)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nSTORE_DRIVER=sqlite\nSQLITE_PATH=/tmp/x.db\n"), 0o600))
	// Registered for cleanup so values set by the file do not leak.
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SQLITE_PATH", "")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("STORE_DRIVER")
	os.Unsetenv("SQLITE_PATH")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "/tmp/x.db", cfg.DSN())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "oracle")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestValidateThresholds(t *testing.T) {
	cfg := Config{StoreDriver: "sqlite", JWTSecret: "x", AdminUsername: "a", AdminPassword: "b", LowStockCritical: 10, LowStockWarning: 5}
	assert.Error(t, cfg.Validate())
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := Config{StoreDriver: "postgres", DatabaseURL: "postgres://u:p@h/db"}
	assert.Equal(t, "postgres://u:p@h/db", cfg.DSN())

	cfg = Config{StoreDriver: "postgres", DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "db", DBPort: "5432"}
	assert.Contains(t, cfg.DSN(), "host=h")
}
