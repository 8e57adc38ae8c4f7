package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/testutil"
	"github.com/hupe1980/agentcore/memory"
	"github.com/hupe1980/agentcore/tool"
)

type brokenStore struct{ *memory.InMemoryStore }

func (brokenStore) Put(context.Context, string, string, any) error { return errors.New("disk full") }

func executorWith(policy StepPolicy, tools ...tool.Tool) *StepExecutor {
	reasoner := testutil.NewScriptedReasoner(core.Thought{Analysis: "thinking", NextAction: "n", Confidence: 0.7})
	return NewStepExecutor(reasoner, tool.NewRegistry(tools...), func(o *ExecutorOptions) {
		o.Policy = policy
		o.Agent = "tester"
	})
}

func fixed(a core.Action) StepPolicy {
	return PolicyFunc(func(*core.State, core.Thought) core.Action { return a })
}

func TestStepExecutor_HistoryOrder(t *testing.T) {
	state := testutil.NewStateBuilder("find docs").Build()
	exec := executorWith(NewFixedSchedule(), tool.NewSearchTool(nil))

	entries, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, core.EntryThink, entries[0].Type)
	assert.Equal(t, core.EntryAction, entries[1].Type)
	assert.Equal(t, 0, entries[0].Step)

	history := state.History()
	require.Len(t, history, 3)
	assert.Equal(t, core.Turn{Role: core.RoleUser, Content: "find docs", Timestamp: testutil.FixedTime}, history[0])
	assert.Equal(t, core.RoleAssistant, history[1].Role)
	assert.Equal(t, "thinking", history[1].Content)
	assert.Equal(t, core.RoleTool, history[2].Role)
	assert.Equal(t, "Search results for 'find docs': [Mock Results]", history[2].Content)
	assert.Equal(t, 0, state.Step(), "the loop advances the step, not the executor")
}

func TestStepExecutor_ReasoningContext(t *testing.T) {
	state := testutil.NewStateBuilder("goal").Memory("k", "v").Steps(4).Build()
	reasoner := testutil.NewScriptedReasoner(core.Thought{Analysis: "a"})
	exec := NewStepExecutor(reasoner, tool.NewRegistry(), func(o *ExecutorOptions) {
		o.Policy = fixed(RespondAction("ok"))
	})

	ctx := core.WithRunID(context.Background(), "run-9")
	_, err := exec.Execute(ctx, state)
	require.NoError(t, err)

	calls := reasoner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "run-9", calls[0].RunID)
	assert.Equal(t, 4, calls[0].Step)
	assert.Equal(t, "goal", calls[0].Prompt)
	assert.Equal(t, map[string]any{"k": "v"}, calls[0].Memory)
	require.Len(t, calls[0].History, 1, "history includes the user turn of this step")
}

func TestStepExecutor_Dispatch(t *testing.T) {
	store := memory.NewInMemoryStore()
	builtins := tool.Builtins(store, "ns")

	tests := []struct {
		name   string
		action core.Action
		want   string
		logged bool
	}{
		{"calculate", CalculateAction("2+2"), "Result: 4", true},
		{"calculate error", CalculateAction("1/0"), "Error: division by zero", true},
		{"search", SearchAction("x"), "Search results for 'x': [Mock Results]", true},
		{"remember store", RememberAction("k", "v"), "Stored: k", true},
		{"remember invalid", core.Action{Name: core.ActionRemember, Details: map[string]any{"action": "drop"}}, "Invalid action", true},
		{"respond", RespondAction("bye"), "bye", false},
		{"respond empty", core.Action{Name: core.ActionRespond}, "No response", false},
		{"unknown", core.Action{Name: "dance"}, "Unknown action", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := testutil.NewStateBuilder("goal").Build()
			_, err := executorWith(fixed(tc.action), builtins...).Execute(context.Background(), state)
			require.NoError(t, err)

			history := state.History()
			assert.Equal(t, tc.want, history[len(history)-1].Content)
			if tc.logged {
				assert.Len(t, state.ToolLog(), 1)
			} else {
				assert.Empty(t, state.ToolLog())
			}
		})
	}
}

func TestStepExecutor_RememberMirrorsState(t *testing.T) {
	store := memory.NewInMemoryStore()
	state := testutil.NewStateBuilder("goal").Build()

	exec := executorWith(fixed(RememberAction("city", "Berlin")), tool.NewMemoryTool(store))
	_, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "Berlin", state.GetMemory("city"))
	v, ok, err := store.Get(context.Background(), "default", "city")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Berlin", v)

	recall := executorWith(fixed(RecallAction("city")), tool.NewMemoryTool(store))
	_, err = recall.Execute(context.Background(), state)
	require.NoError(t, err)
	history := state.History()
	assert.Equal(t, `"Berlin"`, history[len(history)-1].Content)
}

func TestStepExecutor_FailedStoreDoesNotMirror(t *testing.T) {
	state := testutil.NewStateBuilder("goal").Build()
	failing := tool.NewMemoryTool(brokenStore{memory.NewInMemoryStore()})

	_, err := executorWith(fixed(RememberAction("k", 1)), failing).Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, state.GetMemory("k"))
	log := state.ToolLog()
	require.Len(t, log, 1)
	assert.Contains(t, log[0].Result, "disk full")
}

func TestStepExecutor_PanickingTool(t *testing.T) {
	stub := testutil.NewStubTool("search", "")
	stub.Panic = "kaboom"
	state := testutil.NewStateBuilder("goal").Build()

	entries, err := executorWith(fixed(SearchAction("q")), stub).Execute(context.Background(), state)
	require.NoError(t, err)
	text, _ := entries[1].Text()
	assert.Equal(t, "Error: tool panicked: kaboom", text)
	assert.Equal(t, "q", stub.Calls()[0].String(0, "query"))
}

func TestStepExecutor_ReasoningError(t *testing.T) {
	cause := errors.New("rate limited")
	reasoner := testutil.NewScriptedReasoner(core.Thought{}).Fail(cause)
	state := testutil.NewStateBuilder("goal").Steps(2).Build()

	_, err := NewStepExecutor(reasoner, tool.NewRegistry()).Execute(context.Background(), state)

	var reasonErr *core.ReasoningError
	require.ErrorAs(t, err, &reasonErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, reasonErr.Step)
	assert.Len(t, state.History(), 1, "only the user turn is appended")
}
