package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/tool"
)

// ErrMalformedThought is returned when a model reply does not contain a valid
// thought object. It is never retried.
var ErrMalformedThought = errors.New("malformed thought")

// DefaultInstructions is the instruction template used by ModelReasoner.
// Available fields: .goal .step .prompt .memory .tools .actions
const DefaultInstructions = `You are an autonomous agent working towards a goal.
Goal: {{.goal}}
Step: {{.step}}
{{- if .memory}}
Known facts:
{{- range $k, $v := .memory}}
- {{$k}}: {{$v}}
{{- end}}
{{- end}}
Available actions: {{join ", " .actions}}
{{- if .tools}}
Tools:
{{- range .tools}}
- {{.Name}}: {{.Description}}
{{- end}}
{{- end}}

Reply with a single JSON object and nothing else:
{"analysis": "<your reasoning>", "next_action": "<action>" or "<action>: <argument>", "confidence": <number between 0 and 1>}`

// ModelReasonerOptions configures a ModelReasoner.
type ModelReasonerOptions struct {
	// Instructions is a text/template rendered per step.
	Instructions string
	// Tools are described to the model in the instructions.
	Tools []tool.Info
	// HistoryWindow limits how many trailing history turns are sent (0 = all).
	HistoryWindow int
	Stream        bool
	Logger        logging.Logger
}

// ModelReasoner asks a language model for the next thought.
type ModelReasoner struct {
	model model.Model
	opts  ModelReasonerOptions
}

// NewModelReasoner creates a provider backed by m.
func NewModelReasoner(m model.Model, optFns ...func(o *ModelReasonerOptions)) *ModelReasoner {
	opts := ModelReasonerOptions{
		Instructions:  DefaultInstructions,
		HistoryWindow: 20,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelReasoner{model: m, opts: opts}
}

// Name identifies the provider as "<provider>/<model>".
func (r *ModelReasoner) Name() string {
	info := r.model.Info()
	return info.Provider + "/" + info.Name
}

// Think implements core.ReasoningProvider.
func (r *ModelReasoner) Think(ctx context.Context, rc core.ReasoningContext) (core.Thought, error) {
	req, err := r.buildRequest(rc)
	if err != nil {
		return core.Thought{}, err
	}

	start := time.Now()
	resp, err := model.Collect(ctx, r.model, req)
	if err != nil {
		r.opts.Logger.Warn("reasoning.model.error", "provider", r.Name(), "step", rc.Step, "error", err.Error())
		return core.Thought{}, err
	}
	r.opts.Logger.Debug("reasoning.model.response", "provider", r.Name(), "step", rc.Step,
		"duration_ms", time.Since(start).Milliseconds(), "finish_reason", resp.FinishReason)

	return ParseThought(resp.Text)
}

func (r *ModelReasoner) buildRequest(rc core.ReasoningContext) (model.Request, error) {
	instructions, err := util.RenderTemplate(r.opts.Instructions, map[string]any{
		"goal":    rc.Goal,
		"step":    rc.Step,
		"prompt":  rc.Prompt,
		"memory":  rc.Memory,
		"tools":   r.opts.Tools,
		"actions": []any{core.ActionSearch, core.ActionCalculate, core.ActionRemember, core.ActionRespond},
	})
	if err != nil {
		return model.Request{}, fmt.Errorf("render instructions: %w", err)
	}

	history := rc.History
	if w := r.opts.HistoryWindow; w > 0 && len(history) > w {
		history = history[len(history)-w:]
	}
	msgs := make([]model.Message, 0, len(history)+1)
	for _, turn := range history {
		msgs = append(msgs, model.Message{Role: turn.Role, Content: turn.Content})
	}
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != "user" {
		prompt := rc.Prompt
		if prompt == "" {
			prompt = rc.Goal
		}
		msgs = append(msgs, model.Message{Role: "user", Content: prompt})
	}

	return model.Request{
		Instructions: instructions,
		Messages:     msgs,
		Stream:       r.opts.Stream,
		JSON:         true,
	}, nil
}

// ParseThought extracts the first JSON object from text and decodes it as a
// thought. Surrounding prose and code fences are ignored.
func ParseThought(text string) (core.Thought, error) {
	i := strings.Index(text, "{")
	if i < 0 {
		return core.Thought{}, fmt.Errorf("%w: no JSON object in %q", ErrMalformedThought, preview(text))
	}

	var raw struct {
		Analysis   *string  `json:"analysis"`
		NextAction string   `json:"next_action"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
		return core.Thought{}, fmt.Errorf("%w: %v", ErrMalformedThought, err)
	}
	if raw.Analysis == nil {
		return core.Thought{}, fmt.Errorf("%w: missing analysis", ErrMalformedThought)
	}

	th := core.Thought{Analysis: *raw.Analysis, NextAction: strings.TrimSpace(raw.NextAction)}
	if raw.Confidence != nil {
		th.Confidence = *raw.Confidence
	}
	if err := th.Validate(); err != nil {
		return core.Thought{}, fmt.Errorf("%w: %v", ErrMalformedThought, err)
	}
	return th, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 80 {
		return string(r[:80]) + "..."
	}
	return s
}
