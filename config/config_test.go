package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, 10, cfg.Agent.MaxSteps)
	assert.Equal(t, ProviderHeuristic, cfg.Reasoner.Provider)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "agentcore.yaml")
	content := []byte(`
agent:
  name: researcher
  max_steps: 4
  policy: thought
  step_rate: 2.5
reasoner:
  provider: openai
  model: gpt-4o-mini
  stream: true
store:
  backend: sqlite
  scope: run
  sqlite:
    path: runs.db
    busy_timeout: 2s
log:
  level: debug
  format: text
`)
	require.NoError(t, os.WriteFile(file, content, 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "researcher", cfg.Agent.Name)
	assert.Equal(t, 4, cfg.Agent.MaxSteps)
	assert.Equal(t, PolicyThought, cfg.Agent.Policy)
	assert.Equal(t, 2.5, cfg.Agent.StepRate)
	assert.Equal(t, ProviderOpenAI, cfg.Reasoner.Provider)
	assert.True(t, cfg.Reasoner.Stream)
	assert.Equal(t, "runs.db", cfg.Store.SQLite.Path)
	assert.Equal(t, 2*time.Second, cfg.Store.SQLite.BusyTimeout)
	assert.Equal(t, "run", cfg.Store.Scope)
	assert.Equal(t, "text", cfg.Log.Format)

	// untouched fields keep their defaults
	assert.Equal(t, DefaultConfig().Reasoner.MaxRetries, cfg.Reasoner.MaxRetries)
	assert.True(t, cfg.Store.SQLite.EnableWAL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENTCORE_AGENT_MAX_STEPS", "7")
	t.Setenv("AGENTCORE_REASONER_PROVIDER", "gemini")
	t.Setenv("AGENTCORE_STORE_SQLITE_PATH", "env.db")
	t.Setenv("AGENTCORE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Agent.MaxSteps)
	assert.Equal(t, ProviderGemini, cfg.Reasoner.Provider)
	assert.Equal(t, "env.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"blank name", func(c *Config) { c.Agent.Name = " " }, "agent.name"},
		{"negative steps", func(c *Config) { c.Agent.MaxSteps = -1 }, "max_steps"},
		{"policy", func(c *Config) { c.Agent.Policy = "random" }, "agent.policy"},
		{"confidence", func(c *Config) { c.Agent.MinConfidence = 2 }, "min_confidence"},
		{"step rate", func(c *Config) { c.Agent.StepRate = -1 }, "step_rate"},
		{"provider", func(c *Config) { c.Reasoner.Provider = "oracle" }, "reasoner.provider"},
		{"backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"sqlite path", func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.SQLite.Path = "" }, "store.sqlite.path"},
		{"scope", func(c *Config) { c.Store.Scope = "global" }, "store.scope"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	ok := DefaultConfig()
	ok.Store.Backend = BackendSQLite
	ok.Store.SQLite.Path = ""
	ok.Store.SQLite.InMemory = true
	assert.NoError(t, ok.Validate())
}
