package trace

import (
	"maps"
	"slices"
)

// Kind tags the micro-operation a step records, e.g. "split_child" or
// "reduce_indegree". Each engine declares its own kinds.
type Kind string

// Payload holds operation-specific data for a step. Values must be plain data;
// the recorder deep-copies the slice and map types listed on [ClonePayload].
type Payload map[string]any

// Step is one immutable record of an algorithm micro-operation.
type Step struct {
	Index     int      // Position in the log (0-based)
	Kind      Kind     // Micro-operation tag
	Focus     []string // Ids of the structure nodes this step concerns
	Payload   Payload  // Operation data, already copied
	Snapshot  Snapshot // Independent deep copy of the structure
	Narrative string   // Deterministic description for display
}

// FocusID returns the first focus id, or "" when the step has none.
func (s Step) FocusID() string {
	if len(s.Focus) == 0 {
		return ""
	}
	return s.Focus[0]
}

// Int returns the payload value under key as an int.
func (s Step) Int(key string) (int, bool) {
	v, ok := s.Payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		// Decoded JSON numbers.
		return int(n), true
	}
	return 0, false
}

// Text returns the payload value under key as a string.
func (s Step) Text(key string) (string, bool) {
	v, ok := s.Payload[key].(string)
	return v, ok
}

// clone returns a copy of the step that shares no memory with s.
func (s Step) clone() Step {
	s.Focus = slices.Clone(s.Focus)
	s.Payload = ClonePayload(s.Payload)
	if s.Snapshot != nil {
		s.Snapshot = s.Snapshot.Clone()
	}
	return s
}

// ClonePayload deep-copies p. Slices of int, string, float64, bool and any,
// maps of string to int, string or any, and nested payloads are copied
// recursively; other values are copied by assignment.
func ClonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []int:
		return slices.Clone(x)
	case []string:
		return slices.Clone(x)
	case []float64:
		return slices.Clone(x)
	case []bool:
		return slices.Clone(x)
	case [][]int:
		out := make([][]int, len(x))
		for i, row := range x {
			out[i] = slices.Clone(row)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]int:
		return maps.Clone(x)
	case map[string]string:
		return maps.Clone(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case Payload:
		return ClonePayload(x)
	default:
		return v
	}
}
