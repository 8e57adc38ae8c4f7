package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/tool"
)

// MockProvider for testing the retry wrapper
type MockProvider struct{ mock.Mock }

func (m *MockProvider) Think(ctx context.Context, rc core.ReasoningContext) (core.Thought, error) {
	args := m.Called(ctx, rc)
	return args.Get(0).(core.Thought), args.Error(1)
}

func fastRetry(o *RetryOptions) {
	o.InitialInterval = time.Millisecond
	o.MaxInterval = time.Millisecond
	o.MaxRetries = 2
}

func TestHeuristic(t *testing.T) {
	h := NewHeuristic()
	th, err := h.Think(context.Background(), core.ReasoningContext{Prompt: "Find information about Go agent frameworks and compare them"})
	require.NoError(t, err)
	assert.Equal(t, "Analyzing: Find information about Go agent frameworks and co...", th.Analysis)
	assert.Equal(t, "determine_best_tool", th.NextAction)
	assert.Equal(t, 0.95, th.Confidence)

	short, _ := h.Think(context.Background(), core.ReasoningContext{Goal: "hi"})
	assert.Equal(t, "Analyzing: hi...", short.Analysis)

	multibyte, _ := NewHeuristic(func(o *HeuristicOptions) { o.PreviewLength = 2 }).
		Think(context.Background(), core.ReasoningContext{Prompt: "äöü"})
	assert.Equal(t, "Analyzing: äö...", multibyte.Analysis)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Think(ctx, core.ReasoningContext{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseThought(t *testing.T) {
	th, err := ParseThought("Sure!\n```json\n{\"analysis\":\"look it up\",\"next_action\":\"search: go\",\"confidence\":0.8}\n```")
	require.NoError(t, err)
	assert.Equal(t, core.Thought{Analysis: "look it up", NextAction: "search: go", Confidence: 0.8}, th)

	for _, bad := range []string{
		"no json here",
		`{"analysis": "x", "confidence": 1.5}`,
		`{"next_action": "search"}`,
		`{"analysis": `,
	} {
		_, err := ParseThought(bad)
		assert.ErrorIs(t, err, ErrMalformedThought, bad)
	}
}

func TestModelReasoner_Think(t *testing.T) {
	m := model.NewMockModel("mock-1", "mock")
	m.Enqueue(`{"analysis":"calc","next_action":"calculate: 2+2","confidence":0.9}`)

	r := NewModelReasoner(m, func(o *ModelReasonerOptions) {
		o.Tools = []tool.Info{{Name: "calculator", Description: "adds things"}}
	})
	assert.Equal(t, "mock/mock-1", r.Name())

	th, err := r.Think(context.Background(), core.ReasoningContext{
		Goal:    "what is 2+2",
		Step:    3,
		Prompt:  "what is 2+2",
		History: []core.Turn{{Role: "user", Content: "what is 2+2"}},
		Memory:  map[string]any{"goal": "what is 2+2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "calculate: 2+2", th.NextAction)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].JSON)
	assert.Contains(t, reqs[0].Instructions, "Step: 3")
	assert.Contains(t, reqs[0].Instructions, "- goal: what is 2+2")
	assert.Contains(t, reqs[0].Instructions, "- calculator: adds things")
	assert.Contains(t, reqs[0].Instructions, "search, calculate, remember, respond")
	require.Len(t, reqs[0].Messages, 1)
	assert.Equal(t, "user", reqs[0].Messages[0].Role)
}

func TestModelReasoner_HistoryWindowAndPrompt(t *testing.T) {
	m := model.NewMockModel("m", "mock")
	m.Enqueue(`{"analysis":"a"}`)
	r := NewModelReasoner(m, func(o *ModelReasonerOptions) { o.HistoryWindow = 2 })

	_, err := r.Think(context.Background(), core.ReasoningContext{
		Prompt: "goal",
		History: []core.Turn{
			{Role: "user", Content: "1"},
			{Role: "assistant", Content: "2"},
			{Role: "tool", Content: "3"},
		},
	})
	require.NoError(t, err)
	msgs := m.Requests()[0].Messages
	require.Len(t, msgs, 3, "window of 2 plus the trailing user prompt")
	assert.Equal(t, "2", msgs[0].Content)
	assert.Equal(t, "goal", msgs[2].Content)
}

func TestModelReasoner_Errors(t *testing.T) {
	m := model.NewMockModel("m", "mock")
	m.Enqueue("I cannot answer that")
	r := NewModelReasoner(m)
	_, err := r.Think(context.Background(), core.ReasoningContext{Prompt: "x"})
	assert.ErrorIs(t, err, ErrMalformedThought)

	m.SetError(errors.New("401 unauthorized"))
	_, err = r.Think(context.Background(), core.ReasoningContext{Prompt: "x"})
	assert.ErrorContains(t, err, "unauthorized")

	bad := NewModelReasoner(m, func(o *ModelReasonerOptions) { o.Instructions = "{{.goal" })
	_, err = bad.Think(context.Background(), core.ReasoningContext{Prompt: "x"})
	assert.ErrorContains(t, err, "render instructions")
}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	p := &MockProvider{}
	want := core.Thought{Analysis: "ok", Confidence: 0.5}
	p.On("Think", mock.Anything, mock.Anything).Return(core.Thought{}, errors.New("timeout")).Once()
	p.On("Think", mock.Anything, mock.Anything).Return(want, nil).Once()

	got, err := NewRetry(p, fastRetry).Think(context.Background(), core.ReasoningContext{Step: 1})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	p.AssertNumberOfCalls(t, "Think", 2)
}

func TestRetry_GivesUp(t *testing.T) {
	p := &MockProvider{}
	p.On("Think", mock.Anything, mock.Anything).Return(core.Thought{}, errors.New("503"))

	_, err := NewRetry(p, fastRetry).Think(context.Background(), core.ReasoningContext{})
	assert.ErrorContains(t, err, "503")
	p.AssertNumberOfCalls(t, "Think", 3)
}

func TestRetry_MalformedIsPermanent(t *testing.T) {
	p := &MockProvider{}
	p.On("Think", mock.Anything, mock.Anything).Return(core.Thought{}, ErrMalformedThought)

	_, err := NewRetry(p, fastRetry).Think(context.Background(), core.ReasoningContext{})
	assert.ErrorIs(t, err, ErrMalformedThought)
	p.AssertNumberOfCalls(t, "Think", 1)
}

func TestRetry_Name(t *testing.T) {
	r := NewRetry(NewHeuristic())
	assert.Equal(t, "heuristic", r.Name())
	assert.True(t, strings.HasPrefix(core.ProviderName(&MockProvider{}), "*reasoning."))
}
