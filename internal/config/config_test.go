package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("METRICS_ENABLED", "")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sgo", cfg.DBName)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "sgo", DBSSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/sgo?sslmode=require", cfg.DSN())
}

func TestValidate(t *testing.T) {
	t.Run("release without secret", func(t *testing.T) {
		cfg := &Config{GinMode: "release"}
		require.Error(t, cfg.Validate())
	})

	t.Run("development without secret falls back", func(t *testing.T) {
		cfg := &Config{GinMode: "debug"}
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.Secret())
	})

	t.Run("short admin password", func(t *testing.T) {
		cfg := &Config{AdminEmail: "admin@sgo.test", AdminPassword: "123"}
		require.Error(t, cfg.Validate())
	})
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "off")
	assert.False(t, getEnvBool("FLAG", true))
	t.Setenv("FLAG", "garbage")
	assert.True(t, getEnvBool("FLAG", true))
}
