package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with gemini credentials", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.Server.Port)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
		assert.Equal(t, 0.7, cfg.LLM.Temperature)
		assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
		assert.Equal(t, "report_narratives", cfg.Qdrant.Collection)
		assert.False(t, cfg.Storage.DebugHTML)
	})

	t.Run("fails without credentials for the selected provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", ProviderGemini)
		t.Setenv("GEMINI_API_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("fails on an unknown provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "llama-local")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown LLM_PROVIDER")
	})

	t.Run("openai provider needs its own key", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", ProviderOpenAI)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	})
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "db.internal",
			Port:     "5433",
			User:     "reports",
			Password: "secret",
			DBName:   "report_generator",
		},
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=reports password=secret dbname=report_generator sslmode=disable",
		cfg.GetDatabaseDSN())
}
