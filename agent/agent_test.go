package agent

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/testutil"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/memory"
	"github.com/hupe1980/agentcore/reasoning"
	"github.com/hupe1980/agentcore/tool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestAgent(store core.MemoryStore, optFns ...func(o *Options)) *Agent {
	if store == nil {
		store = memory.NewInMemoryStore()
	}
	base := func(o *Options) {
		o.Registry = tool.NewRegistry(tool.Builtins(store, "tester")...)
		o.Clock = testutil.FixedClock()
		o.MaxSteps = 3
	}
	return New("tester", reasoning.NewHeuristic(), append([]func(o *Options){base}, optFns...)...)
}

func TestAgent_Run_FixedSchedule(t *testing.T) {
	a := newTestAgent(nil)

	report, err := a.Run(context.Background(), "learn go")
	require.NoError(t, err)

	assert.Equal(t, "learn go", report.Goal)
	assert.Equal(t, "tester", report.Agent)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 6, report.Steps)
	require.Len(t, report.Results, 6)

	var actions []string
	for i, e := range report.Results {
		assert.Equal(t, i/2, e.Step)
		if i%2 == 0 {
			th, ok := e.Thought()
			require.True(t, ok)
			assert.Equal(t, "Analyzing: learn go...", th.Analysis)
			continue
		}
		text, ok := e.Text()
		require.True(t, ok)
		actions = append(actions, text)
	}
	assert.Equal(t, []string{
		"Search results for 'learn go': [Mock Results]",
		"Stored: goal",
		"Completed analysis of learn go",
	}, actions)

	assert.Equal(t, map[string]any{"goal": "learn go"}, report.Memory)
	require.Len(t, report.ToolLog, 2, "respond does not invoke a tool")
	assert.Equal(t, "search", report.ToolLog[0].ToolName)
	assert.Equal(t, "memory", report.ToolLog[1].ToolName)
}

func TestAgent_Run_StepCountMatchesBudget(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, DefaultMaxSteps} {
		a := newTestAgent(nil, func(o *Options) { o.MaxSteps = n })
		report, err := a.Run(context.Background(), "goal")
		require.NoError(t, err)
		assert.Equal(t, 2*n, report.Steps, "max steps %d", n)
		assert.Len(t, report.Results, 2*n)
	}
}

func TestAgent_Run_InvalidGoal(t *testing.T) {
	events := 0
	a := newTestAgent(nil, func(o *Options) {
		o.Observer = core.ObserverFunc(func(core.Event) { events++ })
	})

	for _, goal := range []string{"", "   ", "\n\t"} {
		report, err := a.Run(context.Background(), goal)
		assert.ErrorIs(t, err, core.ErrInvalidGoal)
		assert.Nil(t, report)
	}
	assert.Zero(t, events, "no run may start for a blank goal")
}

func TestAgent_Run_StateResetsButMemoryToolPersists(t *testing.T) {
	store := memory.NewInMemoryStore()

	first := newTestAgent(store)
	_, err := first.Run(context.Background(), "alpha")
	require.NoError(t, err)

	recall := PolicyFunc(func(state *core.State, _ core.Thought) core.Action {
		return RecallAction("goal")
	})
	second := newTestAgent(store, func(o *Options) {
		o.MaxSteps = 1
		o.Policy = recall
	})
	report, err := second.Run(context.Background(), "beta")
	require.NoError(t, err)

	text, _ := report.Results[1].Text()
	assert.Equal(t, `"alpha"`, text)
	assert.Empty(t, report.Memory, "state memory starts empty for every run")

	again, err := second.Run(context.Background(), "gamma")
	require.NoError(t, err)
	assert.Equal(t, "gamma", again.Goal)
	assert.Len(t, again.ToolLog, 1)
	assert.NotEqual(t, report.RunID, again.RunID)
}

func TestAgent_Run_Deterministic(t *testing.T) {
	run := func() *core.RunReport {
		r, err := newTestAgent(nil).Run(context.Background(), "compare frameworks")
		require.NoError(t, err)
		return r
	}
	a, b := run(), run()

	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(core.RunReport{}, "RunID")); diff != "" {
		t.Errorf("identical runs differ (-first +second):\n%s", diff)
	}
}

func TestAgent_Run_ReasoningFailure(t *testing.T) {
	cause := errors.New("provider unavailable")
	reasoner := testutil.NewScriptedReasoner(core.Thought{Analysis: "ok", Confidence: 1}).
		Then(core.Thought{Analysis: "first", Confidence: 1}).
		Fail(cause)

	var failed []core.Event
	a := New("tester", reasoner, func(o *Options) {
		o.Registry = tool.NewRegistry(tool.Builtins(memory.NewInMemoryStore(), "tester")...)
		o.Observer = core.ObserverFunc(func(e core.Event) {
			if e.Type == core.EventRunFailed {
				failed = append(failed, e)
			}
		})
	})

	report, err := a.Run(context.Background(), "goal")
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var runErr *core.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 1, runErr.Step)
	require.NotNil(t, runErr.Partial)
	assert.Equal(t, 2, runErr.Partial.Steps)
	for _, e := range runErr.Partial.Results {
		if text, ok := e.Text(); ok {
			assert.NotContains(t, text, "provider unavailable")
		}
	}

	var reasonErr *core.ReasoningError
	require.ErrorAs(t, err, &reasonErr)
	assert.Equal(t, "scripted", reasonErr.Provider)
	assert.Equal(t, 1, reasonErr.Step)

	require.Len(t, failed, 1)
	assert.Equal(t, err.Error(), "agent tester run "+runErr.RunID+" aborted at step 1: "+reasonErr.Error())
}

func TestAgent_Run_InvalidThoughtIsFatal(t *testing.T) {
	reasoner := testutil.NewScriptedReasoner(core.Thought{Analysis: "x", Confidence: 7})
	_, err := New("tester", reasoner).Run(context.Background(), "goal")

	var reasonErr *core.ReasoningError
	require.ErrorAs(t, err, &reasonErr)
	assert.Equal(t, 0, reasonErr.Step)
}

func TestAgent_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAgent(nil).Run(ctx, "goal")
	assert.ErrorIs(t, err, context.Canceled)
	var runErr *core.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 0, runErr.Partial.Steps)
}

func TestAgent_Run_CancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestAgent(nil, func(o *Options) {
		o.Observer = core.ObserverFunc(func(e core.Event) {
			if e.Type == core.EventAction && e.Step == 0 {
				cancel()
			}
		})
	})

	_, err := a.Run(ctx, "goal")
	var runErr *core.RunError
	require.ErrorAs(t, err, &runErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runErr.Step)
	assert.Equal(t, 2, runErr.Partial.Steps)
}

func TestAgent_AddTool_AffectsLaterRunsOnly(t *testing.T) {
	replacement := testutil.NewStubTool("search", "replaced")

	var a *Agent
	a = newTestAgent(nil, func(o *Options) {
		o.MaxSteps = 1
		o.Observer = core.ObserverFunc(func(e core.Event) {
			if e.Type == core.EventRunStarted {
				a.AddTool("search", replacement)
			}
		})
	})

	first, err := a.Run(context.Background(), "goal")
	require.NoError(t, err)
	text, _ := first.Results[1].Text()
	assert.Equal(t, "Search results for 'goal': [Mock Results]", text)

	second, err := a.Run(context.Background(), "goal")
	require.NoError(t, err)
	text, _ = second.Results[1].Text()
	assert.Equal(t, "replaced", text)
	assert.Len(t, replacement.Calls(), 1)
}

func TestAgent_Run_MissingTool(t *testing.T) {
	a := New("bare", reasoning.NewHeuristic(), func(o *Options) { o.MaxSteps = 2 })

	report, err := a.Run(context.Background(), "goal")
	require.NoError(t, err)
	search, _ := report.Results[1].Text()
	remember, _ := report.Results[3].Text()
	assert.Equal(t, "Tool 'search' not found", search)
	assert.Equal(t, "Tool 'memory' not found", remember)
	assert.Empty(t, report.ToolLog)
	assert.Empty(t, report.Memory)
}

func TestAgent_Run_EventsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Output: &buf})

	var types []core.EventType
	a := newTestAgent(nil, func(o *Options) {
		o.MaxSteps = 1
		o.Logger = logger
		o.StepRate = rate.Limit(1000)
		o.Observer = core.ObserverFunc(func(e core.Event) { types = append(types, e.Type) })
	})

	report, err := a.Run(context.Background(), "goal")
	require.NoError(t, err)

	assert.Equal(t, []core.EventType{
		core.EventRunStarted, core.EventThought, core.EventAction, core.EventRunCompleted,
	}, types)
	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+report.RunID+`"`)
	assert.Contains(t, out, "Tool execution completed")
	assert.Contains(t, out, "Reasoning call completed")
	assert.Contains(t, out, "Run completed")
}
