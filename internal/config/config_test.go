package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"PORT", "GIN_MODE", "PUBLIC_URL", "DB_DRIVER", "DATABASE_URL", "DB_HOST", "SQLITE_PATH",
	"DUMMY_MODE", "JWT_SECRET", "JWT_EXPIRY", "JWT_REFRESH_EXPIRY", "CORS_ORIGINS",
	"FREE_LIMIT_MAX_REQUESTS", "FREE_LIMIT_PER_SECONDS", "TIMEZONE", "DISPATCH_SCHEDULE",
	"DISPATCH_TIMEOUT", "LOG_DEBUG",
}

// clearEnv blanks every key Load reads; getEnv treats empty values as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.DummyMode, "no database configured means dummy mode")
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "hatirlat-dev-secret", cfg.JWT.Secret)
	assert.Equal(t, FreeLimitConfig{MaxRequests: 10, PerSeconds: 60}, cfg.FreeLimit)
	assert.Equal(t, "@every 1m", cfg.DispatchSchedule)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadDatabaseSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hatirlat")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.DummyMode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/hatirlat", cfg.Database.DSN())

	t.Setenv("DUMMY_MODE", "true")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.True(t, cfg.DummyMode)
}

func TestLoadSQLiteDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "data/app.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.DummyMode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/app.db", cfg.Database.SQLitePath)
}

func TestLoadHostDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", User: "app", Password: "pw", Name: "hatirlat", Port: "5432", SSLMode: "disable"}
	assert.Contains(t, d.DSN(), "host=localhost user=app password=pw dbname=hatirlat port=5432 sslmode=disable")
	assert.True(t, d.Configured())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nCORS_ORIGINS=http://a.test, http://b.test\nTIMEZONE=UTC\n"), 0o600))
	// godotenv does not override variables that are already set
	os.Unsetenv("PORT")
	os.Unsetenv("CORS_ORIGINS")
	os.Unsetenv("TIMEZONE")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("CORS_ORIGINS")
		os.Unsetenv("TIMEZONE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC.String(), cfg.Timezone.String())
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := map[string]string{
		"JWT_EXPIRY":              "soon",
		"FREE_LIMIT_MAX_REQUESTS": "-1",
		"LOG_DEBUG":               "maybe",
		"TIMEZONE":                "Mars/Olympus",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadReleaseRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "release")
	_, err := Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}
