package reasoning

import (
	"context"

	"github.com/hupe1980/agentcore/core"
)

// HeuristicOptions configures the Heuristic provider.
type HeuristicOptions struct {
	// PreviewLength is the number of prompt runes quoted in the analysis.
	PreviewLength int
	NextAction    string
	Confidence    float64
}

// Heuristic is the reference offline provider. It never fails (except on a
// canceled context) and always produces
//
//	{analysis: "Analyzing: <prompt prefix>...", next_action: "determine_best_tool", confidence: 0.95}
type Heuristic struct {
	opts HeuristicOptions
}

// NewHeuristic creates a Heuristic provider.
func NewHeuristic(optFns ...func(o *HeuristicOptions)) *Heuristic {
	opts := HeuristicOptions{
		PreviewLength: 50,
		NextAction:    "determine_best_tool",
		Confidence:    0.95,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Heuristic{opts: opts}
}

// Name identifies the provider in logs and errors.
func (h *Heuristic) Name() string { return "heuristic" }

// Think implements core.ReasoningProvider.
func (h *Heuristic) Think(ctx context.Context, rc core.ReasoningContext) (core.Thought, error) {
	if err := ctx.Err(); err != nil {
		return core.Thought{}, err
	}
	prompt := rc.Prompt
	if prompt == "" {
		prompt = rc.Goal
	}
	preview := []rune(prompt)
	if len(preview) > h.opts.PreviewLength {
		preview = preview[:h.opts.PreviewLength]
	}
	return core.Thought{
		Analysis:   "Analyzing: " + string(preview) + "...",
		NextAction: h.opts.NextAction,
		Confidence: h.opts.Confidence,
	}, nil
}
