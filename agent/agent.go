package agent

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/tool"
)

// DefaultMaxSteps is the step budget used when none is configured.
const DefaultMaxSteps = 10

// Options configures an Agent.
type Options struct {
	// MaxSteps is the exact number of iterations per run.
	MaxSteps int
	Policy   StepPolicy
	// Registry holds the tools available to runs. Each run dispatches through
	// a snapshot taken when the run starts.
	Registry *tool.Registry
	Logger   logging.Logger
	Observer core.Observer
	// StepRate limits how many steps per second a run may start. Zero
	// disables limiting.
	StepRate rate.Limit
	// Clock stamps history, tool log and report times.
	Clock core.Clock
}

// Agent drives the think-act loop for a goal over a fixed step budget.
//
// Every call to Run starts from a fresh State. The tools, however, are shared:
// a memory tool registered on the agent keeps its store across runs.
type Agent struct {
	name     string
	reasoner core.ReasoningProvider
	registry *tool.Registry
	policy   StepPolicy
	maxSteps int
	logger   logging.Logger
	observer core.Observer
	stepRate rate.Limit
	clock    core.Clock
}

// New creates an agent. Without a Registry option the agent starts with an
// empty registry; use AddTool or tool.Builtins to populate it.
func New(name string, reasoner core.ReasoningProvider, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
		Clock:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry()
	}
	if opts.Policy == nil {
		opts.Policy = NewFixedSchedule()
	}
	if opts.MaxSteps < 0 {
		opts.MaxSteps = 0
	}

	return &Agent{
		name:     name,
		reasoner: reasoner,
		registry: opts.Registry,
		policy:   opts.Policy,
		maxSteps: opts.MaxSteps,
		logger:   opts.Logger,
		observer: opts.Observer,
		stepRate: opts.StepRate,
		clock:    opts.Clock,
	}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// MaxSteps returns the configured step budget.
func (a *Agent) MaxSteps() int { return a.maxSteps }

// Registry returns the agent's live tool registry.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// AddTool registers t under name. Runs already in flight keep their snapshot.
func (a *Agent) AddTool(name string, t tool.Tool) {
	a.registry.Register(name, t)
}

// Run executes exactly MaxSteps iterations for goal and returns the report.
// Steps == 2*MaxSteps on success. The run id is taken from the context
// (core.WithRunID) when present, otherwise generated.
//
// A blank goal fails with core.ErrInvalidGoal before any state is created.
// Reasoning failures and cancellation abort the run with a *core.RunError
// whose Partial report holds the entries of the completed steps.
func (a *Agent) Run(ctx context.Context, goal string) (*core.RunReport, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, core.ErrInvalidGoal
	}

	runID, ok := core.RunIDFromContext(ctx)
	if !ok {
		runID = core.NewID()
		ctx = core.WithRunID(ctx, runID)
	}
	logger := a.runLogger(runID)

	state := core.NewState(goal, a.clock)
	exec := NewStepExecutor(a.reasoner, a.registry.Snapshot(), func(o *ExecutorOptions) {
		o.Policy = a.policy
		o.Logger = logger
		o.Observer = a.observer
		o.Agent = a.name
	})

	var limiter *rate.Limiter
	if a.stepRate > 0 {
		limiter = rate.NewLimiter(a.stepRate, 1)
	}

	started := a.clock().UTC()
	results := make([]core.Entry, 0, 2*a.maxSteps)
	a.emit(core.NewEvent(runID, a.name, core.EventRunStarted, 0))
	logger.Info("Run started", "goal", goal, "max_steps", a.maxSteps)

	fail := func(err error) error {
		runErr := &core.RunError{
			RunID:   runID,
			Agent:   a.name,
			Step:    state.Step(),
			Err:     err,
			Partial: core.NewRunReport(runID, a.name, state, results, started, a.clock().UTC()),
		}
		a.emit(core.NewFailureEvent(runID, a.name, state.Step(), err))
		a.record(logger, runID, state.Step(), started, err)
		return runErr
	}

	for i := 0; i < a.maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fail(err)
			}
		}

		entries, err := exec.Execute(ctx, state)
		if err != nil {
			return nil, fail(err)
		}
		results = append(results, entries[:]...)
		state.Advance()
	}

	report := core.NewRunReport(runID, a.name, state, results, started, a.clock().UTC())
	a.emit(core.NewEvent(runID, a.name, core.EventRunCompleted, state.Step()))
	a.record(logger, runID, state.Step(), started, nil)
	return report, nil
}

func (a *Agent) runLogger(runID string) logging.Logger {
	if sl, ok := a.logger.(*logging.StructuredLogger); ok {
		return sl.WithRun(a.name, runID)
	}
	return a.logger
}

func (a *Agent) record(logger logging.Logger, runID string, steps int, started time.Time, err error) {
	dur := a.clock().UTC().Sub(started)
	if rec, ok := logger.(logging.Recorder); ok {
		rec.LogRunExecution(a.name, runID, steps, dur, err == nil, err)
		return
	}
	if err != nil {
		logger.Error("Run failed", "run_id", runID, "steps", steps, "error", err)
		return
	}
	logger.Info("Run completed", "run_id", runID, "steps", steps, "duration", dur)
}

func (a *Agent) emit(ev core.Event) {
	if a.observer != nil {
		a.observer.OnEvent(ev)
	}
}
