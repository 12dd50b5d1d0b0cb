package blend

import (
	"sort"
	"strconv"
	"strings"
)

// Stats is a decoded statistics payload. Its shape is defined entirely by the
// companion script, so it is kept as a schema-less JSON tree.
type Stats struct {
	value any
	raw   string
}

// Value returns the decoded JSON tree (map[string]any, []any, string,
// float64, bool or nil).
func (s *Stats) Value() any {
	if s == nil {
		return nil
	}
	return s.value
}

// Raw returns the JSON text exactly as isolated from Blender's output.
func (s *Stats) Raw() string {
	if s == nil {
		return ""
	}
	return s.raw
}

// MarshalJSON emits the payload as received.
func (s *Stats) MarshalJSON() ([]byte, error) {
	if s == nil || s.raw == "" {
		return []byte("null"), nil
	}
	return []byte(s.raw), nil
}

// Lookup walks a dotted path ("objects.MESH", "scenes.0.name") through the
// tree. Numeric path elements index into arrays.
func (s *Stats) Lookup(path string) (any, bool) {
	if s == nil {
		return nil, false
	}
	cur := s.value
	if path == "" {
		return cur, true
	}
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Flatten returns every scalar leaf keyed by its dotted path. A scalar
// top-level payload is keyed "value".
func (s *Stats) Flatten() map[string]any {
	out := make(map[string]any)
	if s == nil {
		return out
	}
	flatten("", s.value, out)
	return out
}

// Numbers returns the numeric leaves of Flatten, with booleans as 0 or 1.
// These are the values tracked and compared over time.
func (s *Stats) Numbers() map[string]float64 {
	out := make(map[string]float64)
	for k, v := range s.Flatten() {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case bool:
			if n {
				out[k] = 1
			} else {
				out[k] = 0
			}
		}
	}
	return out
}

// Keys returns the sorted keys of Flatten.
func (s *Stats) Keys() []string {
	flat := s.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, v any, out map[string]any) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			flatten(joinKey(prefix, k), child, out)
		}
	case []any:
		for i, child := range node {
			flatten(joinKey(prefix, strconv.Itoa(i)), child, out)
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		out[prefix] = node
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
