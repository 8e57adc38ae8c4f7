package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentcore/core"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (text, json, yaml)", format)
	}
}

// encode writes v as JSON or YAML. Text rendering is handled by the callers.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func writeReport(w io.Writer, format string, r *core.RunReport) error {
	if format != FormatText {
		return encode(w, format, r)
	}

	fmt.Fprintf(w, "Run %s (agent %s)\n", r.RunID, r.Agent)
	fmt.Fprintf(w, "Goal: %s\n", r.Goal)
	fmt.Fprintf(w, "Entries: %d, duration %s\n\n", r.Steps, r.Duration())
	for _, e := range r.Results {
		if th, ok := e.Thought(); ok {
			fmt.Fprintf(w, "[%d] think  %s (next: %s, confidence %.2f)\n", e.Step, th.Analysis, th.NextAction, th.Confidence)
			continue
		}
		text, _ := e.Text()
		fmt.Fprintf(w, "[%d] action %s\n", e.Step, text)
	}

	if len(r.Memory) > 0 {
		keys := make([]string, 0, len(r.Memory))
		for k := range r.Memory {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "\nMemory:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %v\n", k, r.Memory[k])
		}
	}
	return nil
}

func writeReportList(w io.Writer, format string, reports []*core.RunReport) error {
	if format != FormatText {
		return encode(w, format, reports)
	}
	if len(reports) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(w, "%s  %s  %3d entries  %s\n", r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Steps, oneLine(r.Goal, 60))
	}
	return nil
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
