// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the arovi configuration.
//
// Values are resolved from, in increasing precedence: defaults, an optional
// arovi.yaml file, AROVI_* environment variables and command line flags bound
// to the returned [*viper.Viper].
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/go-a2a/arovi/briefing"
	"github.com/go-a2a/arovi/model"
	"github.com/go-a2a/arovi/types"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "AROVI"

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the complete arovi configuration.
type Config struct {
	AppName string `mapstructure:"app_name"`
	// Model is the model name, e.g. gemini-2.5-flash or claude-sonnet-4-5.
	Model           string `mapstructure:"model"`
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`

	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// PipelineConfig tunes the briefing workflow.
type PipelineConfig struct {
	MinRelevanceLen   int           `mapstructure:"min_relevance_len"`
	MaxRiskIterations int           `mapstructure:"max_risk_iterations"`
	StopWhenSafe      bool          `mapstructure:"stop_when_safe"`
	URLContext        bool          `mapstructure:"url_context"`
	VerifySources     bool          `mapstructure:"verify_sources"`
	OracleTimeout     time.Duration `mapstructure:"oracle_timeout"` // zero disables the bound
	FallbackOnTimeout bool          `mapstructure:"fallback_on_timeout"`
	MaxLLMCalls       int           `mapstructure:"max_llm_calls"`
}

// SessionConfig selects where sessions are stored.
type SessionConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScheduleConfig configures recurring briefing generation.
type ScheduleConfig struct {
	// Cron is a standard five field cron spec, or a descriptor such as @daily.
	Cron      string             `mapstructure:"cron"`
	Requests  []briefing.Request `mapstructure:"requests"`
	OutputDir string             `mapstructure:"output_dir"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppName: "arovi",
		Model:   briefing.DefaultModelName,
		Pipeline: PipelineConfig{
			MinRelevanceLen:   briefing.DefaultMinRelevanceLen,
			MaxRiskIterations: briefing.DefaultMaxRiskIterations,
			MaxLLMCalls:       types.DefaultMaxLLMCalls,
		},
		Session: SessionConfig{
			Backend:    BackendMemory,
			SQLitePath: "arovi.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Schedule: ScheduleConfig{
			Cron:      "@daily",
			OutputDir: "briefings",
		},
	}
}

// New returns a [*viper.Viper] carrying the defaults and the environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// AROVI_PIPELINE_MAX_RISK_ITERATIONS for pipeline.max_risk_iterations
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("google_api_key", EnvPrefix+"_GOOGLE_API_KEY", model.EnvGoogleAPIKey)
	_ = v.BindEnv("anthropic_api_key", EnvPrefix+"_ANTHROPIC_API_KEY", model.EnvAnthropicAPIKey)

	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app_name", d.AppName)
	v.SetDefault("model", d.Model)
	v.SetDefault("google_api_key", "")
	v.SetDefault("anthropic_api_key", "")

	v.SetDefault("pipeline.min_relevance_len", d.Pipeline.MinRelevanceLen)
	v.SetDefault("pipeline.max_risk_iterations", d.Pipeline.MaxRiskIterations)
	v.SetDefault("pipeline.stop_when_safe", d.Pipeline.StopWhenSafe)
	v.SetDefault("pipeline.url_context", d.Pipeline.URLContext)
	v.SetDefault("pipeline.verify_sources", d.Pipeline.VerifySources)
	v.SetDefault("pipeline.oracle_timeout", d.Pipeline.OracleTimeout)
	v.SetDefault("pipeline.fallback_on_timeout", d.Pipeline.FallbackOnTimeout)
	v.SetDefault("pipeline.max_llm_calls", d.Pipeline.MaxLLMCalls)

	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.sqlite_path", d.Session.SQLitePath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("schedule.cron", d.Schedule.Cron)
	v.SetDefault("schedule.output_dir", d.Schedule.OutputDir)
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arovi"
	}
	return filepath.Join(home, ".arovi")
}

// Load reads the configuration file into v and returns the validated configuration.
//
// An explicit file must exist. Without one, arovi.yaml is searched in the
// working directory and in [ConfigDir], and its absence is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("arovi")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &cfg, nil
}

// IsClaude reports whether the configured model is served by Anthropic.
func (c *Config) IsClaude() bool {
	return strings.HasPrefix(strings.ToLower(c.Model), "claude")
}

// APIKey returns the credential of the provider serving the configured model.
func (c *Config) APIKey() string {
	if c.IsClaude() {
		return c.AnthropicAPIKey
	}
	return c.GoogleAPIKey
}

// RunConfig returns the per-invocation limits of the pipeline.
func (c *Config) RunConfig() *types.RunConfig {
	rc := types.NewRunConfig()
	rc.MaxLLMCalls = c.Pipeline.MaxLLMCalls
	rc.OracleTimeout = c.Pipeline.OracleTimeout
	rc.FallbackOnTimeout = c.Pipeline.FallbackOnTimeout
	return rc
}

// PipelineOptions returns the briefing options for the configuration.
func (c *Config) PipelineOptions() briefing.Options {
	return briefing.Options{
		ModelName:         c.Model,
		MinRelevanceLen:   c.Pipeline.MinRelevanceLen,
		MaxRiskIterations: c.Pipeline.MaxRiskIterations,
		StopWhenSafe:      c.Pipeline.StopWhenSafe,
		URLContext:        c.Pipeline.URLContext,
		VerifySources:     c.Pipeline.VerifySources,
	}
}
