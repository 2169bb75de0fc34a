package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majidsaddiqye/reciperemix/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendOrigin)
	assert.Contains(t, cfg.DSN(), "dbname=reciperemix")
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "password=hunter2")
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Run("missing JWT_SECRET", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY_FILE", "")
		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("invalid REDIS_DB", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REDIS_DB", "not-a-number")
		_, err := config.Load()
		require.Error(t, err)
	})
}

func TestLoadAPIKeyFromFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "")

	keyFile := filepath.Join(t.TempDir(), "openai.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  sk-from-file\n"), 0o600))
	t.Setenv("OPENAI_API_KEY_FILE", keyFile)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.OpenAIAPIKey)

	t.Run("empty file is rejected", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.key")
		require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
		t.Setenv("OPENAI_API_KEY_FILE", empty)
		_, err := config.Load()
		require.Error(t, err)
	})
}
