package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "studydeck.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 2, cfg.Storage.SaveWorkers)
	assert.Equal(t, 4, cfg.Study.MasteryThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STUDYDECK_SERVER_PORT", "9999")
	t.Setenv("STUDYDECK_SERVER_LOG_LEVEL", "debug")
	t.Setenv("STUDYDECK_STUDY_MASTERY_THRESHOLD", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 6, cfg.Study.MasteryThreshold)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("STUDYDECK_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("STUDYDECK_SERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("STUDYDECK_STORAGE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err, "postgres driver without a URL should fail validation")
}

func TestLoadPostgresWithURL(t *testing.T) {
	t.Setenv("STUDYDECK_STORAGE_DRIVER", "postgres")
	t.Setenv("STUDYDECK_STORAGE_POSTGRES_URL", "postgres://localhost:5432/studydeck")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
}
