package core

import "fmt"

// Args carries the arguments of a tool invocation. Positional values map to
// the tool's ordered parameters, Named values to keyword parameters. Tools
// typically read a parameter by position first and fall back to its name.
type Args struct {
	Positional []any          `json:"positional,omitempty" yaml:"positional,omitempty"`
	Named      map[string]any `json:"named,omitempty" yaml:"named,omitempty"`
}

// NewArgs builds Args from positional values.
func NewArgs(positional ...any) Args {
	return Args{Positional: positional}
}

// With returns a copy of the args with an additional named value.
func (a Args) With(name string, value any) Args {
	c := a.Clone()
	if c.Named == nil {
		c.Named = map[string]any{}
	}
	c.Named[name] = value
	return c
}

// Value returns the positional value at index i, falling back to the named
// value. The boolean reports whether either was present.
func (a Args) Value(i int, name string) (any, bool) {
	if i >= 0 && i < len(a.Positional) {
		return a.Positional[i], true
	}
	if name != "" && a.Named != nil {
		v, ok := a.Named[name]
		return v, ok
	}
	return nil, false
}

// String is like Value but renders the result as a string. Missing values
// and nil yield "".
func (a Args) String(i int, name string) string {
	v, ok := a.Value(i, name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Len returns the total number of supplied arguments.
func (a Args) Len() int { return len(a.Positional) + len(a.Named) }

// Clone copies the positional slice and named map.
func (a Args) Clone() Args {
	c := Args{}
	if a.Positional != nil {
		c.Positional = append([]any(nil), a.Positional...)
	}
	if a.Named != nil {
		c.Named = make(map[string]any, len(a.Named))
		for k, v := range a.Named {
			c.Named[k] = v
		}
	}
	return c
}
