package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfigFile(writeConfigFile(t, "app:\n  logLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 20*time.Second, cfg.Extraction.Timeout)
	assert.True(t, cfg.Extraction.UseLLM)
	assert.Empty(t, cfg.Quiz.BankFile)
	assert.Equal(t, 4, cfg.App.RankConcurrency)
	assert.False(t, cfg.LLMExtractionEnabled(), "no key configured")
}

func TestLoadConfigFileEnvironmentOverrides(t *testing.T) {
	t.Setenv("HIRESCORE_AI_APIKEY", "env-key")
	t.Setenv("HIRESCORE_SERVER_PORT", "9999")
	t.Setenv("HIRESCORE_SERVER_APIKEYS", "a, b,,c")

	cfg, err := LoadConfigFile(writeConfigFile(t, "server:\n  host: 0.0.0.0\n"))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
	assert.True(t, cfg.LLMExtractionEnabled())
}

func TestLoadConfigFileRejectsPostgresWithoutURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfigFile(writeConfigFile(t, "store:\n  driver: postgres\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databaseURL")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetExtractConfigFallsBackToGlobal(t *testing.T) {
	retries := 5
	cfg := &Config{
		AI: AIConfig{
			Provider:         "gemini",
			Model:            "gemini-2.0-flash",
			Timeout:          30 * time.Second,
			APIKey:           "global",
			MaxRetries:       2,
			Temperature:      0.1,
			UseSystemPrompts: true,
			CustomPrompts:    PromptConfig{SystemPrompt: "global system"},
			Extract: OperationAIConfig{
				Model:      "gemini-2.5-pro",
				MaxRetries: &retries,
			},
		},
	}

	op := cfg.GetExtractConfig()

	assert.Equal(t, "gemini", op.Provider)
	assert.Equal(t, "gemini-2.5-pro", op.Model)
	assert.Equal(t, "global", op.APIKey)
	require.NotNil(t, op.Timeout)
	assert.Equal(t, 30*time.Second, *op.Timeout)
	assert.Equal(t, 5, *op.MaxRetries)
	assert.InDelta(t, 0.1, *op.Temperature, 1e-6)
	assert.True(t, *op.UseSystemPrompts)
	assert.Equal(t, "global system", op.CustomPrompts.SystemPrompt)
	assert.Nil(t, cfg.AI.Extract.Timeout, "operation config itself is not mutated")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI:         AIConfig{Timeout: time.Second},
			Extraction: ExtractionConfig{Timeout: time.Second},
			Store:      StoreConfig{Driver: "memory"},
			Server:     ServerConfig{Port: "8080"},
			App: AppConfig{
				DefaultFormat:    "json",
				SupportedFormats: []string{"json", "text"},
				RankConcurrency:  1,
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ai timeout", func(c *Config) { c.AI.Timeout = 0 }},
		{"zero extraction timeout", func(c *Config) { c.Extraction.Timeout = 0 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres" }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"unsupported default format", func(c *Config) { c.App.DefaultFormat = "xml" }},
		{"zero concurrency", func(c *Config) { c.App.RankConcurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadPromptFiles(t *testing.T) {
	dir := t.TempDir()
	system := filepath.Join(dir, "system.txt")
	require.NoError(t, os.WriteFile(system, []byte("  You extract resume fields.\n"), 0o600))

	cfg := &Config{}
	cfg.AI.Extract.CustomPrompts.SystemPromptFile = system
	cfg.AI.Extract.CustomPrompts.SystemPrompt = "inline"

	require.NoError(t, cfg.loadPromptFiles())
	assert.Equal(t, "You extract resume fields.", cfg.AI.Extract.CustomPrompts.SystemPrompt)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte(" \n"), 0o600))
	cfg.AI.CustomPrompts.UserPromptFile = empty
	assert.Error(t, cfg.loadPromptFiles())

	cfg.AI.CustomPrompts.UserPromptFile = dir
	assert.Error(t, cfg.loadPromptFiles())
}
