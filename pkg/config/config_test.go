package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("DB_USER", "tweeter")
	t.Setenv("DB_PASSWORD", "tweeter")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "file://internal/database/migrations", cfg.Migrations)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DB_USER", "tweeter")
	t.Setenv("DB_PASSWORD", "tweeter")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDatabaseCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "tweeter_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=tweeter password=tweeter dbname=tweeter_test sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestIsProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
