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
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("SESSION_MAX", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "archaeo.db", cfg.GetDSN())
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.ImageModel)
	assert.Equal(t, "https://frigated.onurpatent.com", cfg.FrigatedURL)
	assert.Equal(t, 10000, cfg.MaxSessions)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "ARCHAEO_TEST_ONLY=1\nREQUEST_TIMEOUT=30\nCACHE_TTL=60\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("ARCHAEO_TEST_ONLY")
		os.Unsetenv("REQUEST_TIMEOUT")
		os.Unsetenv("CACHE_TTL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestValidate_Postgres(t *testing.T) {
	cfg := &Config{
		RequestTimeout: time.Second,
		MaxUploadBytes: 1,
		DB:             DBConfig{Driver: DriverPostgres, Host: "db"},
	}
	assert.EqualError(t, cfg.Validate(), "DB_USER is required")

	cfg.DB.User, cfg.DB.Password, cfg.DB.Database = "u", "p", "arch"
	cfg.DB.Port, cfg.DB.SSLMode = 5432, "disable"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=arch sslmode=disable", cfg.GetDSN())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{RequestTimeout: time.Second, MaxUploadBytes: 1, DB: DBConfig{Driver: "mysql"}}
	assert.Error(t, cfg.Validate())
}
