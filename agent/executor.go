package agent

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/tool"
)

// Results of actions that never reach a tool.
const (
	NoResponseResult    = "No response"
	UnknownActionResult = "Unknown action"
)

// Registry names of the tools backing the built-in actions.
const (
	SearchToolName     = "search"
	CalculatorToolName = "calculator"
	MemoryToolName     = "memory"
)

// ExecutorOptions configures a StepExecutor.
type ExecutorOptions struct {
	Policy   StepPolicy
	Logger   logging.Logger
	Observer core.Observer
	// Agent is the name reported in events.
	Agent string
}

// StepExecutor runs a single think-act iteration against a State.
type StepExecutor struct {
	reasoner core.ReasoningProvider
	tools    *tool.Registry
	policy   StepPolicy
	logger   logging.Logger
	observer core.Observer
	agent    string
}

// NewStepExecutor creates an executor dispatching through tools.
func NewStepExecutor(reasoner core.ReasoningProvider, tools *tool.Registry, optFns ...func(o *ExecutorOptions)) *StepExecutor {
	opts := ExecutorOptions{
		Policy: NewFixedSchedule(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &StepExecutor{
		reasoner: reasoner,
		tools:    tools,
		policy:   opts.Policy,
		logger:   opts.Logger,
		observer: opts.Observer,
		agent:    opts.Agent,
	}
}

// Execute performs one step: reason about the goal, choose an action,
// dispatch it and return the think and action entries. A reasoning failure
// is returned as *core.ReasoningError; tool failures are part of the action
// result and never returned as errors. The caller advances the step.
func (e *StepExecutor) Execute(ctx context.Context, state *core.State) ([2]core.Entry, error) {
	step := state.Step()
	goal := state.Goal()
	runID, _ := core.RunIDFromContext(ctx)

	state.AppendHistory(core.RoleUser, goal)

	thought, err := e.think(ctx, state, runID, step)
	if err != nil {
		return [2]core.Entry{}, err
	}
	state.AppendHistory(core.RoleAssistant, thought.Analysis)
	e.emit(core.NewThoughtEvent(runID, e.agent, step, thought))

	action := e.policy.Next(state, thought)
	result := e.dispatch(ctx, state, action)
	state.AppendHistory(core.RoleTool, result)
	e.emit(core.NewActionEvent(runID, e.agent, step, action, result))

	return [2]core.Entry{
		core.NewThinkEntry(step, thought),
		core.NewActionEntry(step, result),
	}, nil
}

func (e *StepExecutor) think(ctx context.Context, state *core.State, runID string, step int) (core.Thought, error) {
	provider := core.ProviderName(e.reasoner)
	start := time.Now()

	thought, err := e.reasoner.Think(ctx, core.ReasoningContext{
		RunID:   runID,
		Goal:    state.Goal(),
		Step:    step,
		Prompt:  state.Goal(),
		History: state.History(),
		Memory:  state.Memory(),
	})
	if err == nil {
		err = thought.Validate()
	}

	if rec, ok := e.logger.(logging.Recorder); ok {
		rec.LogReasoningCall(provider, step, time.Since(start), err == nil, err)
	}
	if err != nil {
		return core.Thought{}, &core.ReasoningError{Provider: provider, Step: step, Err: err}
	}
	return thought, nil
}

func (e *StepExecutor) dispatch(ctx context.Context, state *core.State, action core.Action) string {
	switch action.Name {
	case core.ActionSearch:
		return e.call(ctx, state, SearchToolName, core.NewArgs(action.Detail("query")))
	case core.ActionCalculate:
		return e.call(ctx, state, CalculatorToolName, core.NewArgs(action.Detail("expression")))
	case core.ActionRemember:
		op := action.Detail("action")
		key := action.Detail("key")
		args := core.NewArgs(op, key)
		value, hasValue := action.Details["value"]
		if hasValue {
			args.Positional = append(args.Positional, value)
		}
		result := e.call(ctx, state, MemoryToolName, args)
		if op == tool.MemoryStore && result == "Stored: "+key {
			state.SetMemory(key, value)
		}
		return result
	case core.ActionRespond:
		if r := action.Detail("response"); r != "" {
			return r
		}
		return NoResponseResult
	default:
		e.logger.Warn("Unknown action", "action", action.Name, "agent", e.agent)
		return UnknownActionResult
	}
}

// call dispatches to a tool and logs the invocation when the tool resolved.
func (e *StepExecutor) call(ctx context.Context, state *core.State, name string, args core.Args) string {
	t, err := e.tools.Resolve(name)
	if err != nil {
		e.logger.Warn("Tool not found", "tool", name, "agent", e.agent)
		return tool.NotFoundResult(name)
	}

	start := time.Now()
	result := tool.SafeExecute(ctx, name, t, args)
	state.RecordToolUse(name, args, result)

	if rec, ok := e.logger.(logging.Recorder); ok {
		var callErr error
		if tool.IsFailure(result) {
			callErr = errors.New(result)
		}
		rec.LogToolCall(name, time.Since(start), callErr == nil, callErr)
	}
	return result
}

func (e *StepExecutor) emit(ev core.Event) {
	if e.observer != nil {
		e.observer.OnEvent(ev)
	}
}
