package agent

import (
	"strings"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
)

// StepPolicy selects the action executed after a reasoning call. It sees the
// state before the step is advanced, so state.Step() is the index of the
// step being executed.
type StepPolicy interface {
	Next(state *core.State, thought core.Thought) core.Action
}

// PolicyFunc adapts a function to StepPolicy.
type PolicyFunc func(state *core.State, thought core.Thought) core.Action

// Next implements StepPolicy.
func (f PolicyFunc) Next(state *core.State, thought core.Thought) core.Action {
	return f(state, thought)
}

// DefaultResponseTemplate is the acknowledgment returned by FixedSchedule
// once the search and remember steps are done.
const DefaultResponseTemplate = "Completed analysis of {{.goal}}"

// FixedScheduleOptions configures a FixedSchedule.
type FixedScheduleOptions struct {
	// ResponseTemplate is rendered with goal and step.
	ResponseTemplate string
}

// FixedSchedule ignores the thought and follows a step-indexed plan:
// search for the goal, remember it under "goal", then respond.
type FixedSchedule struct {
	opts FixedScheduleOptions
}

// NewFixedSchedule creates the default policy.
func NewFixedSchedule(optFns ...func(o *FixedScheduleOptions)) *FixedSchedule {
	opts := FixedScheduleOptions{ResponseTemplate: DefaultResponseTemplate}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FixedSchedule{opts: opts}
}

// Next implements StepPolicy.
func (p *FixedSchedule) Next(state *core.State, _ core.Thought) core.Action {
	goal := state.Goal()
	switch state.Step() {
	case 0:
		return SearchAction(goal)
	case 1:
		return RememberAction("goal", goal)
	default:
		return RespondAction(p.respond(state))
	}
}

func (p *FixedSchedule) respond(state *core.State) string {
	text, err := util.RenderTemplate(p.opts.ResponseTemplate, map[string]any{
		"goal": state.Goal(),
		"step": state.Step(),
	})
	if err != nil {
		return "Completed analysis of " + state.Goal()
	}
	return text
}

// ThoughtDirectedOptions configures a ThoughtDirected policy.
type ThoughtDirectedOptions struct {
	// MinConfidence is the threshold below which the fallback decides.
	MinConfidence float64
	// Fallback handles thoughts that name no usable action.
	Fallback StepPolicy
}

// ThoughtDirected lets the reasoning provider pick the action through
// Thought.NextAction, written as "name" or "name: argument":
//
//	search: golang generics   -> search{query}
//	calculate: 2*(3+4)        -> calculate{expression}
//	remember: city=Berlin     -> remember{store city}
//	remember: city            -> remember{retrieve city}
//	respond: all done         -> respond{response}
//
// Unknown names, missing required arguments and low confidence defer to the
// fallback (a FixedSchedule by default).
type ThoughtDirected struct {
	opts ThoughtDirectedOptions
}

// NewThoughtDirected creates a thought-driven policy.
func NewThoughtDirected(optFns ...func(o *ThoughtDirectedOptions)) *ThoughtDirected {
	opts := ThoughtDirectedOptions{MinConfidence: 0.5}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Fallback == nil {
		opts.Fallback = NewFixedSchedule()
	}
	return &ThoughtDirected{opts: opts}
}

// Next implements StepPolicy.
func (p *ThoughtDirected) Next(state *core.State, thought core.Thought) core.Action {
	if thought.Confidence < p.opts.MinConfidence {
		return p.opts.Fallback.Next(state, thought)
	}
	if a, ok := ParseNextAction(thought.NextAction, state.Goal(), thought.Analysis); ok {
		return a
	}
	return p.opts.Fallback.Next(state, thought)
}

// ParseNextAction converts a "name: argument" directive into an Action. goal
// is the default search query and analysis the default response.
func ParseNextAction(directive, goal, analysis string) (core.Action, bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(directive), ":")
	name = strings.ToLower(strings.TrimSpace(name))
	arg = strings.TrimSpace(arg)

	switch name {
	case core.ActionSearch:
		if arg == "" {
			arg = goal
		}
		return SearchAction(arg), true
	case core.ActionCalculate:
		if arg == "" {
			return core.Action{}, false
		}
		return CalculateAction(arg), true
	case core.ActionRemember:
		key, value, isStore := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return core.Action{}, false
		}
		if isStore {
			return RememberAction(key, strings.TrimSpace(value)), true
		}
		return RecallAction(key), true
	case core.ActionRespond:
		if arg == "" {
			arg = analysis
		}
		return RespondAction(arg), true
	default:
		return core.Action{}, false
	}
}

// SearchAction builds a search action.
func SearchAction(query string) core.Action {
	return core.Action{Name: core.ActionSearch, Details: map[string]any{"query": query}}
}

// CalculateAction builds a calculate action.
func CalculateAction(expression string) core.Action {
	return core.Action{Name: core.ActionCalculate, Details: map[string]any{"expression": expression}}
}

// RememberAction builds a remember/store action.
func RememberAction(key string, value any) core.Action {
	return core.Action{Name: core.ActionRemember, Details: map[string]any{
		"action": "store",
		"key":    key,
		"value":  value,
	}}
}

// RecallAction builds a remember/retrieve action.
func RecallAction(key string) core.Action {
	return core.Action{Name: core.ActionRemember, Details: map[string]any{
		"action": "retrieve",
		"key":    key,
	}}
}

// RespondAction builds a respond action.
func RespondAction(response string) core.Action {
	return core.Action{Name: core.ActionRespond, Details: map[string]any{"response": response}}
}
