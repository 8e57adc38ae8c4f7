package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/agentcore"
	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/config"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/memory"
	"github.com/hupe1980/agentcore/model"
	anthropicmodel "github.com/hupe1980/agentcore/model/anthropic"
	"github.com/hupe1980/agentcore/model/gemini"
	"github.com/hupe1980/agentcore/model/openai"
	"github.com/hupe1980/agentcore/reasoning"
	"github.com/hupe1980/agentcore/runstore"
	"github.com/hupe1980/agentcore/storage/sqlite"
	"github.com/hupe1980/agentcore/tool"
)

// newLogger builds the CLI logger. With a log file configured, output goes to
// a size-rotated file instead of stderr.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*logging.StructuredLogger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	out := stderr
	closer := func() error { return nil }
	noColor := false
	if cfg.File != "" {
		noColor = true
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out, closer = file, file.Close
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Format,
		Output:    out,
		NoColor:   noColor,
		Component: "cli",
	})
	return logger, closer, nil
}

// newStores opens the configured memory and run stores. The returned close
// function releases the backing database, if any.
func newStores(ctx context.Context, cfg config.StoreConfig) (core.MemoryStore, core.RunStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, nil, err
		}
		return s.Memory(), s.Runs(), s.Close, nil
	default:
		return memory.NewInMemoryStore(), runstore.NewInMemoryStore(), func() error { return nil }, nil
	}
}

// builtinTools describes the built-in tools to LLM-backed reasoners.
func builtinTools() []tool.Info {
	return tool.NewRegistry(tool.Builtins(memory.NewInMemoryStore(), "")...).Describe()
}

// newReasoner selects the reasoning provider. LLM-backed providers are wrapped
// in a retry with exponential backoff.
func newReasoner(ctx context.Context, cfg config.ReasonerConfig, logger logging.Logger) (core.ReasoningProvider, error) {
	var m model.Model

	switch cfg.Provider {
	case config.ProviderHeuristic:
		return reasoning.NewHeuristic(), nil
	case config.ProviderOpenAI:
		m = openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
		})
	case config.ProviderAnthropic:
		m = anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
		})
	case config.ProviderGemini:
		gm, err := gemini.NewModel(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}, func(o *gemini.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = float32(cfg.Temperature)
			o.MaxOutputTokens = int32(cfg.MaxTokens)
		})
		if err != nil {
			return nil, err
		}
		m = gm
	default:
		return nil, fmt.Errorf("unsupported reasoning provider %q", cfg.Provider)
	}

	reasoner := reasoning.NewModelReasoner(m, func(o *reasoning.ModelReasonerOptions) {
		o.Tools = builtinTools()
		o.Stream = cfg.Stream
		o.Logger = logger
	})
	return reasoning.NewRetry(reasoner, func(o *reasoning.RetryOptions) {
		o.MaxRetries = cfg.MaxRetries
		o.Logger = logger
	}), nil
}

func newPolicy(cfg config.AgentConfig) agent.StepPolicy {
	fixed := agent.NewFixedSchedule(func(o *agent.FixedScheduleOptions) {
		if cfg.ResponseTemplate != "" {
			o.ResponseTemplate = cfg.ResponseTemplate
		}
	})
	if cfg.Policy == config.PolicyThought {
		return agent.NewThoughtDirected(func(o *agent.ThoughtDirectedOptions) {
			o.MinConfidence = cfg.MinConfidence
			o.Fallback = fixed
		})
	}
	return fixed
}

// newAgentCore assembles the façade from the loaded configuration.
func newAgentCore(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, observer core.Observer) (*agentcore.AgentCore, func() error, error) {
	reasoner, err := newReasoner(ctx, cfg.Reasoner, logger.WithComponent("reasoning"))
	if err != nil {
		return nil, nil, err
	}

	memStore, runStore, closeStores, err := newStores(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	scope := tool.ScopeAgent
	if cfg.Store.Scope == "run" {
		scope = tool.ScopeRun
	}

	ac := agentcore.New(cfg.Agent.Name, func(o *agentcore.Options) {
		o.MaxSteps = cfg.Agent.MaxSteps
		o.Reasoner = reasoner
		o.Policy = newPolicy(cfg.Agent)
		o.MemoryStore = memStore
		o.RunStore = runStore
		o.MemoryScope = scope
		o.StepRate = rate.Limit(cfg.Agent.StepRate)
		o.Observer = observer
		o.Logger = logger.WithComponent("agent")
	})
	return ac, closeStores, nil
}
