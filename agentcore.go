// Package agentcore provides a high-level façade over the execution core. It
// wires the built-in tools (search, calculator, memory), a reasoning provider,
// the stores and an agent.Agent so that most applications only need to:
//  1. Create an AgentCore via New() (optionally overriding the in-memory stores)
//  2. Register additional tools
//  3. Run goals synchronously (Run, RunBatch) or stream their events (Stream)
//
// Every successful run is saved to the configured core.RunStore and can be
// looked up later through Report and Reports.
package agentcore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/memory"
	"github.com/hupe1980/agentcore/reasoning"
	"github.com/hupe1980/agentcore/runstore"
	"github.com/hupe1980/agentcore/tool"
)

// Options configures the AgentCore instance.
type Options struct {
	// MaxSteps is the exact number of iterations per run.
	MaxSteps int

	// Reasoner defaults to reasoning.NewHeuristic().
	Reasoner core.ReasoningProvider
	// Policy defaults to agent.NewFixedSchedule().
	Policy agent.StepPolicy

	// Stores (defaults to in-memory implementations if not provided)
	MemoryStore core.MemoryStore
	RunStore    core.RunStore

	// Searcher backs the search tool; nil uses the mock backend.
	Searcher tool.Searcher
	// MemoryScope controls whether concurrent runs share memory-tool keys.
	MemoryScope tool.MemoryScope

	// MaxConcurrentRuns limits how many runs may execute simultaneously.
	// Zero means unlimited.
	MaxConcurrentRuns int64
	// EventBufferSize sets the channel buffer size used by Stream.
	EventBufferSize int

	StepRate rate.Limit
	Clock    core.Clock

	// Observer additionally receives every event of every run.
	Observer core.Observer
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentCore is the high-level façade aggregating the agent and its services.
type AgentCore struct {
	name  string
	opts  Options
	agent *agent.Agent
	runs  core.RunStore
	sem   *semaphore.Weighted

	mu      sync.RWMutex
	streams map[string]*subscriber
	active  map[string]context.CancelFunc
}

type subscriber struct {
	events chan<- core.Event
	done   <-chan struct{}
}

// New creates an AgentCore named name. Unset services are initialized with
// in-memory implementations and the built-in tools are registered under
// "search", "calculator" and "memory".
func New(name string, optFns ...func(o *Options)) *AgentCore {
	opts := Options{
		MaxSteps:          agent.DefaultMaxSteps,
		Reasoner:          reasoning.NewHeuristic(),
		MemoryStore:       memory.NewInMemoryStore(),
		RunStore:          runstore.NewInMemoryStore(),
		MaxConcurrentRuns: 10,
		EventBufferSize:   100,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &AgentCore{
		name:    name,
		opts:    opts,
		runs:    opts.RunStore,
		streams: make(map[string]*subscriber),
		active:  make(map[string]context.CancelFunc),
	}
	if opts.MaxConcurrentRuns > 0 {
		c.sem = semaphore.NewWeighted(opts.MaxConcurrentRuns)
	}

	registry := tool.NewRegistry(
		tool.NewSearchTool(opts.Searcher),
		tool.NewCalculatorTool(),
		tool.NewMemoryTool(opts.MemoryStore, func(o *tool.MemoryToolOptions) {
			o.Namespace = name
			o.Scope = opts.MemoryScope
		}),
	)

	c.agent = agent.New(name, opts.Reasoner, func(o *agent.Options) {
		o.MaxSteps = opts.MaxSteps
		o.Policy = opts.Policy
		o.Registry = registry
		o.Logger = opts.Logger
		o.Observer = core.ObserverFunc(c.dispatchEvent)
		o.StepRate = opts.StepRate
		if opts.Clock != nil {
			o.Clock = opts.Clock
		}
	})
	return c
}

// Name returns the agent name.
func (c *AgentCore) Name() string { return c.name }

// Agent exposes the underlying agent.
func (c *AgentCore) Agent() *agent.Agent { return c.agent }

// RegisterTool adds or replaces a tool. In-flight runs are not affected.
func (c *AgentCore) RegisterTool(name string, t tool.Tool) { c.agent.AddTool(name, t) }

// Tools describes the registered tools.
func (c *AgentCore) Tools() []tool.Info { return c.agent.Registry().Describe() }

// Run executes goal and saves the report. When saving fails the report is
// still returned together with the error.
func (c *AgentCore) Run(ctx context.Context, goal string) (*core.RunReport, error) {
	runID, ok := core.RunIDFromContext(ctx)
	if !ok {
		runID = core.NewID()
	}
	return c.run(ctx, runID, goal)
}

// RunBatch runs several goals concurrently (bounded by MaxConcurrentRuns) and
// returns the reports in goal order. The first failure cancels the remaining
// runs.
func (c *AgentCore) RunBatch(ctx context.Context, goals []string) ([]*core.RunReport, error) {
	reports := make([]*core.RunReport, len(goals))

	g, groupCtx := errgroup.WithContext(ctx)
	if c.opts.MaxConcurrentRuns > 0 {
		g.SetLimit(int(c.opts.MaxConcurrentRuns))
	}
	for i, goal := range goals {
		g.Go(func() error {
			report, err := c.Run(groupCtx, goal)
			if err != nil {
				return fmt.Errorf("goal %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Stream starts goal asynchronously and returns its run id together with an
// event channel and an error channel. The event channel is closed when the
// run ends; the error channel then yields at most one terminal error. Events
// are delivered with backpressure: a consumer that stops reading stalls the
// run until its context is cancelled.
func (c *AgentCore) Stream(ctx context.Context, goal string) (string, <-chan core.Event, <-chan error, error) {
	if strings.TrimSpace(goal) == "" {
		return "", nil, nil, core.ErrInvalidGoal
	}

	runID := core.NewID()
	eventsCh := make(chan core.Event, c.opts.EventBufferSize)
	errorsCh := make(chan error, 1)

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.streams[runID] = &subscriber{events: eventsCh, done: runCtx.Done()}
	c.active[runID] = cancel
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.streams, runID)
			delete(c.active, runID)
			c.mu.Unlock()
			cancel()
			close(eventsCh)
			close(errorsCh)
		}()

		if _, err := c.run(runCtx, runID, goal); err != nil {
			errorsCh <- err
		}
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel stops an active run by id.
func (c *AgentCore) Cancel(runID string) error {
	c.mu.RLock()
	cancel, ok := c.active[runID]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run %s not active", runID)
	}
	cancel()
	return nil
}

// Report returns a saved report.
func (c *AgentCore) Report(ctx context.Context, runID string) (*core.RunReport, error) {
	return c.runs.Get(ctx, runID)
}

// Reports lists this agent's saved reports, newest first. limit <= 0 returns
// all of them.
func (c *AgentCore) Reports(ctx context.Context, limit int) ([]*core.RunReport, error) {
	return c.runs.List(ctx, c.name, limit)
}

func (c *AgentCore) run(ctx context.Context, runID, goal string) (*core.RunReport, error) {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)
	}

	runCtx, cancel := context.WithCancel(core.WithRunID(ctx, runID))
	defer cancel()
	// Streamed runs are tracked from the moment Stream returns.
	c.mu.Lock()
	_, tracked := c.active[runID]
	if !tracked {
		c.active[runID] = cancel
	}
	c.mu.Unlock()
	if !tracked {
		defer func() {
			c.mu.Lock()
			delete(c.active, runID)
			c.mu.Unlock()
		}()
	}

	report, err := c.agent.Run(runCtx, goal)
	if err != nil {
		return nil, err
	}
	if err := c.runs.Save(ctx, report); err != nil {
		c.opts.Logger.Error("Saving run report failed", "run_id", runID, "error", err)
		return report, fmt.Errorf("save report %s: %w", runID, err)
	}
	return report, nil
}

func (c *AgentCore) dispatchEvent(e core.Event) {
	if c.opts.Observer != nil {
		c.opts.Observer.OnEvent(e)
	}

	c.mu.RLock()
	sub, ok := c.streams[e.RunID]
	c.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case sub.events <- e:
	case <-sub.done:
	}
}
