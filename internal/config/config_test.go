package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "@every 1h", cfg.SweepCron)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, ExportLocal, cfg.ExportBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("SESSION_CACHE_SIZE", "12")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.SessionCacheSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.Minio.UseSSL)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FMSP_TEST_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FMSP_TEST_LOG_LEVEL") })

	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", GetEnvString("FMSP_TEST_LOG_LEVEL", "info"))
}

func TestLoad_Invalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", StorePostgres)
		t.Setenv("DATABASE_URL", "")
		_, err := Load(missing)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load(missing)
		assert.Error(t, err)
	})

	t.Run("minio without keys", func(t *testing.T) {
		t.Setenv("EXPORT_BACKEND", ExportMinio)
		_, err := Load(missing)
		assert.Error(t, err)
	})
}

func TestGetEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("FMSP_INT", "many")
	t.Setenv("FMSP_BOOL", "perhaps")
	t.Setenv("FMSP_DUR", "soon")

	assert.Equal(t, 3, GetEnvInt("FMSP_INT", 3))
	assert.True(t, GetEnvBool("FMSP_BOOL", true))
	assert.Equal(t, time.Second, GetEnvDuration("FMSP_DUR", time.Second))
}
