package util

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ValidationError reports a tool argument that does not satisfy the tool's
// parameter schema. Position is the 1-based positional slot the argument
// binds to, or 0 when it can only be passed by name.
type ValidationError struct {
	Field    string `json:"field"`
	Position int    `json:"position,omitempty"`
	Value    any    `json:"value,omitempty"`
	Message  string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("argument %d (%s) %s", e.Position, e.Field, e.Message)
	}
	return fmt.Sprintf("argument %q %s", e.Field, e.Message)
}

// param is one exported struct field seen as a tool parameter.
type param struct {
	name        string
	jsonType    string
	description string
	optional    bool
}

// structParams walks the exported fields of a struct (or pointer to struct)
// in declaration order. Fields tagged json:"-" are skipped. A field is
// optional when it is a pointer or tagged omitempty.
func structParams(structType any) []param {
	t := reflect.TypeOf(structType)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	params := make([]param, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if !f.IsExported() || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		params = append(params, param{
			name:        name,
			jsonType:    jsonType(f.Type),
			description: f.Tag.Get("description"),
			optional:    f.Type.Kind() == reflect.Ptr || slices.Contains(strings.Split(opts, ","), "omitempty"),
		})
	}
	return params
}

// CreateSchema derives an object schema from a struct's exported fields.
// Non-struct input yields an object schema without properties.
func CreateSchema(structType any) map[string]any {
	properties := map[string]any{}
	var required []string
	for _, p := range structParams(structType) {
		prop := map[string]any{"type": p.jsonType}
		if p.description != "" {
			prop["description"] = p.description
		}
		properties[p.name] = prop
		if !p.optional {
			required = append(required, p.name)
		}
	}

	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// FieldNames returns the parameter names of a struct in declaration order.
// This is the order positional tool arguments bind in.
func FieldNames(structType any) []string {
	params := structParams(structType)
	if params == nil {
		return nil
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.name
	}
	return names
}

// ValidateParameters checks bound tool arguments against schema. positional
// lists the names positional arguments were bound to, so errors can point at
// the slot the caller used. Required fields are checked first, then types;
// within each pass positional names come first and the rest in name order.
// Arguments without a schema property are accepted.
func ValidateParameters(params map[string]any, schema map[string]any, positional ...string) error {
	position := func(name string) int {
		return slices.Index(positional, name) + 1
	}

	for _, name := range orderedNames(requiredFields(schema), positional) {
		if _, ok := params[name]; !ok {
			return &ValidationError{Field: name, Position: position(name), Message: "is required"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	for _, name := range orderedNames(names, positional) {
		prop, _ := properties[name].(map[string]any)
		want, _ := prop["type"].(string)
		value := params[name]
		if !matchesType(value, want) {
			return &ValidationError{
				Field:    name,
				Position: position(name),
				Value:    value,
				Message:  fmt.Sprintf("must be %s, got %T", want, value),
			}
		}
	}
	return nil
}

// orderedNames sorts names with positional parameters first, in binding
// order, followed by the remaining names alphabetically.
func orderedNames(names, positional []string) []string {
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b string) int {
		ia, ib := slices.Index(positional, a), slices.Index(positional, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return out
}

// requiredFields reads "required" as produced by CreateSchema ([]string) or
// by decoding a JSON schema ([]any).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return jsonType(t.Elem())
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}

// matchesType reports whether value fits a JSON schema type. nil matches
// any type and unknown or empty types match everything. Integral float64
// values count as integers since decoded JSON numbers arrive as float64.
func matchesType(value any, want string) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch want {
	case "string":
		return v.Kind() == reflect.String
	case "boolean":
		return v.Kind() == reflect.Bool
	case "integer":
		if v.CanInt() || v.CanUint() {
			return true
		}
		if v.CanFloat() {
			f := v.Float()
			return f == float64(int64(f))
		}
		return false
	case "number":
		return v.CanInt() || v.CanUint() || v.CanFloat()
	case "array":
		return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
	case "object":
		return v.Kind() == reflect.Map
	default:
		return true
	}
}
