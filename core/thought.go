package core

import "fmt"

// Thought is the structured output of one reasoning call. NextAction and
// Confidence are advisory; whether they influence action selection is up to
// the configured step policy.
type Thought struct {
	Analysis   string  `json:"analysis" yaml:"analysis"`
	NextAction string  `json:"next_action" yaml:"next_action"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Validate checks that Confidence lies within [0,1].
func (t Thought) Validate() error {
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", t.Confidence)
	}
	return nil
}

// Action is the concrete step selected by a step policy.
type Action struct {
	Name    string         `json:"name"`
	Details map[string]any `json:"details,omitempty"`
}

// Action names understood by the step executor.
const (
	ActionSearch    = "search"
	ActionCalculate = "calculate"
	ActionRemember  = "remember"
	ActionRespond   = "respond"
)

// Detail returns the string form of a detail value, or "" when missing.
func (a Action) Detail(key string) string {
	v, ok := a.Details[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
