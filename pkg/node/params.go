package node

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Params holds the user-chosen parameters for one operation invocation.
// Values arrive as decoded JSON, so numbers may be float64 and nested
// structures are maps and slices.
type Params map[string]any

// String returns the named string parameter, or "" when absent.
func (p Params) String(name string) string {
	v, ok := p[name]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// RequireString returns the named string parameter or a missing-parameter
// error naming the field.
func (p Params) RequireString(name string) (string, error) {
	s := p.String(name)
	if s == "" {
		return "", NewMissingParamError(name)
	}
	return s, nil
}

// Bool returns the named boolean parameter, or def when absent.
func (p Params) Bool(name string, def bool) bool {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Int returns the named integer parameter, or def when absent. JSON
// numbers decode as float64, so both forms are accepted, as are numeric
// strings from expression-evaluated parameters.
func (p Params) Int(name string, def int) int {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Float returns the named float parameter, or def when absent.
func (p Params) Float(name string, def float64) float64 {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return def
}

// StringMap returns the named parameter as a string-to-string map.
// Accepts map[string]any with string values; non-string values are
// stringified.
func (p Params) StringMap(name string) map[string]string {
	v, ok := p[name]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

// Slice returns the named parameter as a slice of maps, the shape used
// for collection parameters (payload entries, message lists).
func (p Params) Slice(name string) []map[string]any {
	v, ok := p[name]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Resolve returns the first non-empty value among the explicit parameter
// and the supplied fallbacks, in that order. This is the single place
// parameter-or-credential precedence is decided: an explicit parameter
// always wins, a credential default is the fallback.
func (p Params) Resolve(name string, fallbacks ...string) string {
	if s := p.String(name); s != "" {
		return s
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

// ItemIndex returns the input row index this invocation is scoped to.
// The host sets it when fanning a batch out item by item; single
// invocations default to row 0.
func (p Params) ItemIndex() int {
	return p.Int("itemIndex", 0)
}

// Pagination extracts the returnAll/limit pair used by listing
// operations. Limit defaults to 50 and is clamped to at least 1.
func (p Params) Pagination() (returnAll bool, limit int) {
	returnAll = p.Bool("returnAll", false)
	limit = p.Int("limit", 50)
	if limit < 1 {
		limit = 1
	}
	return returnAll, limit
}
