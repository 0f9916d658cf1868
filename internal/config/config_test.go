package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdeck/internal/quiz"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 50, cfg.History.MaxItems)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1024, cfg.Generation.MaxTokens)
	assert.Equal(t, 10, cfg.QuestionCount(quiz.ModePractice))
	assert.Equal(t, 10, cfg.QuestionCount(quiz.ModeRemedial))
	assert.Equal(t, 40, cfg.QuestionCount(quiz.ModeAssessment))
	assert.InDelta(t, 35.0, cfg.Distribution()["part-2"], 1e-9)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  openai:
    model: gpt-4.1-mini
  retry:
    max_attempts: 3
generation:
  strict: true
  temperature: 0.2
cache:
  enabled: true
  backend: redis
  ttl: 1h
assessment:
  banks: [banks/a.json, banks/b.yaml]
modes:
  assessment: 20
`)
	t.Setenv("QUIZDECK_LLM_OPENAI_API_KEY", "sk-env")
	t.Setenv("QUIZDECK_HISTORY_MAX_ITEMS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 5, cfg.History.MaxItems)
	assert.Equal(t, 20, cfg.QuestionCount(quiz.ModeAssessment))
	assert.Equal(t, []string{"banks/a.json", "banks/b.yaml"}, cfg.Assessment.Banks)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "redis", cfg.Cache.Backend)

	qg := cfg.QuestionGen()
	assert.True(t, qg.Strict)
	assert.InDelta(t, 0.2, qg.Temperature, 1e-9)

	lc := cfg.LLMProvider()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-env", lc.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1-mini", lc.OpenAI.Model)
	assert.Equal(t, 3, lc.Retry.MaxAttempts)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
log:
  format: xml
history:
  max_items: 0
assessment:
  distribution:
    part-1: 50
    part-2: 10
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "history.max_items")
	assert.Contains(t, err.Error(), "assessment.distribution")
}

func TestLLMProvider_DiscoversKeys(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	lc := cfg.LLMProvider()
	assert.Equal(t, "gemini", lc.Provider)
	assert.Equal(t, "g-key", lc.Gemini.APIKey)
	assert.Equal(t, "gemini-flash", lc.Gemini.Model)
	assert.NoError(t, lc.Validate())
}

func TestLLMProvider_OllamaNeedsNoKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-ignored")

	cfg, err := Load(writeConfig(t, "llm:\n  provider: ollama\n"))
	require.NoError(t, err)

	lc := cfg.LLMProvider()
	assert.Equal(t, "ollama", lc.Provider)
	assert.Equal(t, "http://localhost:11434", lc.Ollama.ServerURL)
}
