// Package config loads the CLI configuration from a YAML file, AGENTCORE_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/storage/sqlite"
)

// Reasoning providers.
const (
	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Step policies.
const (
	PolicyFixed   = "fixed"
	PolicyThought = "thought"
)

// AgentConfig controls the step loop.
type AgentConfig struct {
	Name             string        `mapstructure:"name"`
	MaxSteps         int           `mapstructure:"max_steps"`
	Policy           string        `mapstructure:"policy"`
	MinConfidence    float64       `mapstructure:"min_confidence"`
	ResponseTemplate string        `mapstructure:"response_template"`
	StepRate         float64       `mapstructure:"step_rate"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// ReasonerConfig selects and tunes the reasoning provider.
type ReasonerConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Stream      bool    `mapstructure:"stream"`
	MaxRetries  uint64  `mapstructure:"max_retries"`
}

// StoreConfig selects where memory-tool values and run reports live.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Scope   string        `mapstructure:"scope"`
	SQLite  sqlite.Config `mapstructure:"sqlite"`
}

// LogConfig controls the CLI logger. An empty File logs to stderr.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config is the root configuration.
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	Reasoner ReasonerConfig `mapstructure:"reasoner"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
}

// Load reads cfgFile (or config.yaml from . and $HOME/.agentcore when empty),
// applies AGENTCORE_* overrides and validates the result. A missing default
// config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.agentcore")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AGENTCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Agent.Name) == "" {
		return errors.New("agent.name is required")
	}
	if c.Agent.MaxSteps < 0 {
		return fmt.Errorf("agent.max_steps must not be negative, got %d", c.Agent.MaxSteps)
	}
	switch c.Agent.Policy {
	case PolicyFixed, PolicyThought:
	default:
		return fmt.Errorf("agent.policy must be %q or %q, got %q", PolicyFixed, PolicyThought, c.Agent.Policy)
	}
	if c.Agent.MinConfidence < 0 || c.Agent.MinConfidence > 1 {
		return fmt.Errorf("agent.min_confidence must be within [0,1], got %v", c.Agent.MinConfidence)
	}
	if c.Agent.StepRate < 0 {
		return fmt.Errorf("agent.step_rate must not be negative, got %v", c.Agent.StepRate)
	}

	switch c.Reasoner.Provider {
	case ProviderHeuristic, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("reasoner.provider %q is not supported", c.Reasoner.Provider)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if !c.Store.SQLite.InMemory && c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	switch c.Store.Scope {
	case "agent", "run":
	default:
		return fmt.Errorf("store.scope must be \"agent\" or \"run\", got %q", c.Store.Scope)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json, text or console, got %q", c.Log.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("agent.name", d.Agent.Name)
	v.SetDefault("agent.max_steps", d.Agent.MaxSteps)
	v.SetDefault("agent.policy", d.Agent.Policy)
	v.SetDefault("agent.min_confidence", d.Agent.MinConfidence)
	v.SetDefault("agent.response_template", d.Agent.ResponseTemplate)
	v.SetDefault("agent.step_rate", d.Agent.StepRate)
	v.SetDefault("agent.timeout", d.Agent.Timeout)

	v.SetDefault("reasoner.provider", d.Reasoner.Provider)
	v.SetDefault("reasoner.model", d.Reasoner.Model)
	v.SetDefault("reasoner.api_key", "")
	v.SetDefault("reasoner.base_url", "")
	v.SetDefault("reasoner.temperature", d.Reasoner.Temperature)
	v.SetDefault("reasoner.max_tokens", d.Reasoner.MaxTokens)
	v.SetDefault("reasoner.stream", d.Reasoner.Stream)
	v.SetDefault("reasoner.max_retries", d.Reasoner.MaxRetries)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.scope", d.Store.Scope)
	v.SetDefault("store.sqlite.path", d.Store.SQLite.Path)
	v.SetDefault("store.sqlite.in_memory", d.Store.SQLite.InMemory)
	v.SetDefault("store.sqlite.enable_wal", d.Store.SQLite.EnableWAL)
	v.SetDefault("store.sqlite.busy_timeout", d.Store.SQLite.BusyTimeout)
	v.SetDefault("store.sqlite.max_open_conns", d.Store.SQLite.MaxOpenConns)
	v.SetDefault("store.sqlite.max_idle_conns", d.Store.SQLite.MaxIdleConns)
	v.SetDefault("store.sqlite.conn_max_lifetime", d.Store.SQLite.ConnMaxLifetime)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// DefaultConfig returns the configuration used when nothing is overridden:
// heuristic reasoning, fixed schedule, in-process stores.
func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name:             "agent",
			MaxSteps:         10,
			Policy:           PolicyFixed,
			MinConfidence:    0.5,
			ResponseTemplate: "Completed analysis of {{.goal}}",
			Timeout:          5 * time.Minute,
		},
		Reasoner: ReasonerConfig{
			Provider:    ProviderHeuristic,
			Temperature: 0.2,
			MaxTokens:   1024,
			MaxRetries:  3,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Scope:   "agent",
			SQLite: sqlite.Config{
				Path:         "agentcore.db",
				EnableWAL:    true,
				BusyTimeout:  5 * time.Second,
				MaxOpenConns: 1,
				MaxIdleConns: 1,
			},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
