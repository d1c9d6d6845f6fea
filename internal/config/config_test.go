package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: groq
  api_key: test-key
store:
  path: /tmp/test.db
timezone: UTC
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	// Empty model falls back to the provider default.
	assert.Equal(t, "llama-3.1-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, "/tmp/test.db", cfg.Store.Path)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VENDORMAIL_API_KEY", "env-key")
	t.Setenv("VENDORMAIL_ADDR", ":9999")
	t.Setenv("VENDORMAIL_DB_PATH", "/tmp/env.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: notreal\n"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Mars/Olympus\n"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", loaded.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", loaded.LLM.Model)
}
