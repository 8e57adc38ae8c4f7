package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntryType distinguishes reasoning and action records inside a run report.
type EntryType string

const (
	// EntryThink marks an entry whose content is a Thought.
	EntryThink EntryType = "think"
	// EntryAction marks an entry whose content is the action outcome string.
	EntryAction EntryType = "action"
)

// Entry is one element of RunReport.Results. Content is a Thought for think
// entries and a string for action entries.
type Entry struct {
	Step    int       `json:"step" yaml:"step"`
	Type    EntryType `json:"type" yaml:"type"`
	Content any       `json:"content" yaml:"content"`
}

// NewThinkEntry builds a think entry.
func NewThinkEntry(step int, t Thought) Entry {
	return Entry{Step: step, Type: EntryThink, Content: t}
}

// NewActionEntry builds an action entry.
func NewActionEntry(step int, result string) Entry {
	return Entry{Step: step, Type: EntryAction, Content: result}
}

// Thought returns the entry content as a Thought when Type is think.
func (e Entry) Thought() (Thought, bool) {
	t, ok := e.Content.(Thought)
	return t, ok && e.Type == EntryThink
}

// Text returns the entry content as a string when Type is action.
func (e Entry) Text() (string, bool) {
	s, ok := e.Content.(string)
	return s, ok && e.Type == EntryAction
}

// UnmarshalJSON restores the typed content (Thought or string) based on Type.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Step    int             `json:"step"`
		Type    EntryType       `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Step, e.Type = raw.Step, raw.Type
	switch raw.Type {
	case EntryThink:
		var t Thought
		if err := json.Unmarshal(raw.Content, &t); err != nil {
			return fmt.Errorf("decode think content: %w", err)
		}
		e.Content = t
	case EntryAction:
		var s string
		if err := json.Unmarshal(raw.Content, &s); err != nil {
			return fmt.Errorf("decode action content: %w", err)
		}
		e.Content = s
	default:
		return fmt.Errorf("unknown entry type %q", raw.Type)
	}
	return nil
}

// RunReport is the serializable outcome of one completed agent run.
// Steps always equals len(Results).
type RunReport struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	Agent      string         `json:"agent" yaml:"agent"`
	Goal       string         `json:"goal" yaml:"goal"`
	Steps      int            `json:"steps" yaml:"steps"`
	Results    []Entry        `json:"results" yaml:"results"`
	Memory     map[string]any `json:"memory" yaml:"memory"`
	ToolLog    []ToolRecord   `json:"tool_log,omitempty" yaml:"tool_log,omitempty"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
}

// NewRunReport assembles a report from the accumulated results and the final
// run state.
func NewRunReport(runID, agent string, state *State, results []Entry, started, finished time.Time) *RunReport {
	res := make([]Entry, len(results))
	copy(res, results)
	return &RunReport{
		RunID:      runID,
		Agent:      agent,
		Goal:       state.Goal(),
		Steps:      len(res),
		Results:    res,
		Memory:     state.Memory(),
		ToolLog:    state.ToolLog(),
		StartedAt:  started,
		FinishedAt: finished,
	}
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Clone returns a copy of the report that shares no slices or maps with r.
// Memory values themselves are copied shallowly.
func (r *RunReport) Clone() *RunReport {
	if r == nil {
		return nil
	}
	c := *r
	c.Results = append([]Entry(nil), r.Results...)
	if r.Memory != nil {
		c.Memory = make(map[string]any, len(r.Memory))
		for k, v := range r.Memory {
			c.Memory[k] = v
		}
	}
	if r.ToolLog != nil {
		c.ToolLog = make([]ToolRecord, len(r.ToolLog))
		for i, rec := range r.ToolLog {
			rec.Args = rec.Args.Clone()
			c.ToolLog[i] = rec
		}
	}
	return &c
}
