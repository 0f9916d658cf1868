// Package config loads quizdeck settings from defaults, an optional YAML
// file and QUIZDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/cache"
	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/store"
)

// EnvPrefix prefixes every environment override: llm.openai.api_key is
// read from QUIZDECK_LLM_OPENAI_API_KEY.
const EnvPrefix = "QUIZDECK"

type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	History    HistoryConfig    `mapstructure:"history"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Generation GenerationConfig `mapstructure:"generation"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
	Modes      ModesConfig      `mapstructure:"modes"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Server     ServerConfig     `mapstructure:"server"`
	Curriculum CurriculumConfig `mapstructure:"curriculum"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	Provider   string         `mapstructure:"provider"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Ollama     ProviderConfig `mapstructure:"ollama"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	Retry      struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		InitialWait time.Duration `mapstructure:"initial_wait"`
		MaxWait     time.Duration `mapstructure:"max_wait"`
		Multiplier  float64       `mapstructure:"multiplier"`
	} `mapstructure:"retry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type DBConfig struct {
	// Path of the sqlite file. Empty means store.DefaultDBPath().
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	MaxItems int `mapstructure:"max_items"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend"` // "memory" or "redis"
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"redis"`
}

type GenerationConfig struct {
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxPriorQuestions int     `mapstructure:"max_prior_questions"`
	MaxExamples       int     `mapstructure:"max_examples"`
	Strict            bool    `mapstructure:"strict"`
	StructuredOutput  bool    `mapstructure:"structured_output"`
}

type AssessmentConfig struct {
	Strict       bool               `mapstructure:"strict"`
	Banks        []string           `mapstructure:"banks"`
	Distribution map[string]float64 `mapstructure:"distribution"`
}

// ModesConfig holds the default question count of each mode.
type ModesConfig struct {
	Practice   int `mapstructure:"practice"`
	Remedial   int `mapstructure:"remedial"`
	Assessment int `mapstructure:"assessment"`
}

type AnalysisConfig struct {
	UseLLM    bool    `mapstructure:"use_llm"`
	Threshold float64 `mapstructure:"threshold"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type CurriculumConfig struct {
	// Path overrides the embedded curriculum.
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.ollama.model", l.Ollama.Model)
	v.SetDefault("llm.ollama.base_url", l.Ollama.ServerURL)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("history.max_items", store.DefaultMaxHistoryItems)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.prefix", "quizdeck:")

	g := questiongen.DefaultConfig()
	v.SetDefault("generation.max_tokens", g.MaxTokens)
	v.SetDefault("generation.temperature", g.Temperature)
	v.SetDefault("generation.max_prior_questions", g.MaxPriorQuestions)
	v.SetDefault("generation.max_examples", g.MaxExamples)

	v.SetDefault("assessment.distribution", map[string]float64(assessment.DefaultDistribution()))

	v.SetDefault("modes.practice", 10)
	v.SetDefault("modes.remedial", 10)
	v.SetDefault("modes.assessment", 40)

	v.SetDefault("analysis.threshold", session.DefaultWeakThreshold)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Keys without defaults still need to be known for env overrides to
	// reach Unmarshal.
	for _, key := range []string{
		"llm.anthropic.api_key", "llm.anthropic.base_url",
		"llm.openai.api_key", "llm.openai.base_url",
		"llm.gemini.api_key",
		"llm.openrouter.api_key", "llm.openrouter.base_url",
		"log.file", "db.path", "cache.redis.password", "cache.redis.db",
		"generation.strict", "generation.structured_output",
		"assessment.strict", "assessment.banks",
		"analysis.use_llm", "curriculum.path",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads configuration. An explicit path must exist; otherwise
// config.yaml is searched in ./, $XDG_CONFIG_HOME/quizdeck and
// ~/.config/quizdeck, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func searchDirs() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "quizdeck"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "quizdeck"))
	}
	return dirs
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	switch c.Log.Format {
	case "json", "console":
	default:
		add("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.History.MaxItems <= 0 {
		add("history.max_items must be positive, got %d", c.History.MaxItems)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		add("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Generation.MaxTokens <= 0 {
		add("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 1 {
		add("generation.temperature must be within [0, 1], got %g", c.Generation.Temperature)
	}
	if c.Modes.Practice <= 0 || c.Modes.Remedial <= 0 || c.Modes.Assessment <= 0 {
		add("modes.* question counts must be positive")
	}
	if c.Analysis.Threshold < 0 || c.Analysis.Threshold > 1 {
		add("analysis.threshold must be within [0, 1], got %g", c.Analysis.Threshold)
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		add("llm.retry.max_attempts must be at least 1, got %d", c.LLM.Retry.MaxAttempts)
	}
	if err := assessment.Distribution(c.Assessment.Distribution).Validate(nil); err != nil {
		add("assessment.distribution: %v", err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// LLMProvider returns the provider configuration. When the selected provider
// has no credentials, standard provider API key variables are probed.
func (c *Config) LLMProvider() llm.Config {
	out := llm.Config{
		Provider:   c.LLM.Provider,
		Anthropic:  llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model, BaseURL: c.LLM.Anthropic.BaseURL},
		OpenAI:     llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL},
		Gemini:     llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model},
		OpenRouter: llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL},
		Ollama:     llm.OllamaConfig{ServerURL: c.LLM.Ollama.BaseURL, Model: c.LLM.Ollama.Model},
		Retry: llm.RetryConfig{
			MaxAttempts: c.LLM.Retry.MaxAttempts,
			InitialWait: c.LLM.Retry.InitialWait,
			MaxWait:     c.LLM.Retry.MaxWait,
			Multiplier:  c.LLM.Retry.Multiplier,
		},
		Timeout: c.LLM.Timeout,
	}
	if out.HasCredentials() {
		return out
	}

	found, ok := llm.DiscoverConfig()
	if !ok {
		return out
	}
	out.Provider = found.Provider
	switch found.Provider {
	case "gemini":
		out.Gemini.APIKey = found.Gemini.APIKey
	case "openai":
		out.OpenAI.APIKey = found.OpenAI.APIKey
	case "anthropic":
		out.Anthropic.APIKey = found.Anthropic.APIKey
	case "openrouter":
		out.OpenRouter.APIKey = found.OpenRouter.APIKey
	}
	return out
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}

// QuestionGen returns the generator configuration.
func (c *Config) QuestionGen() questiongen.Config {
	return questiongen.Config{
		MaxTokens:         c.Generation.MaxTokens,
		Temperature:       c.Generation.Temperature,
		MaxPriorQuestions: c.Generation.MaxPriorQuestions,
		MaxExamples:       c.Generation.MaxExamples,
		Strict:            c.Generation.Strict,
		StructuredOutput:  c.Generation.StructuredOutput,
	}
}

// Distribution returns the assessment part distribution.
func (c *Config) Distribution() assessment.Distribution {
	return assessment.Distribution(c.Assessment.Distribution)
}

// Redis returns the redis cache configuration.
func (c *Config) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
		Prefix:   c.Cache.Redis.Prefix,
	}
}

// QuestionCount returns the default number of questions for mode.
func (c *Config) QuestionCount(mode quiz.Mode) int {
	switch mode {
	case quiz.ModeRemedial:
		return c.Modes.Remedial
	case quiz.ModeAssessment:
		return c.Modes.Assessment
	default:
		return c.Modes.Practice
	}
}
