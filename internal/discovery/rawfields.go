package discovery

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Upstream payloads are loosely typed and vary between endpoints, so field
// access goes through these helpers. Keys may be dotted paths ("caption.text",
// "image_versions2.candidates.0.url").

func lookupPath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// rawString returns the first non-empty string (or number rendered as string) among keys.
func rawString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(t, 10)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}

// rawInt returns the first numeric value among keys, or nil.
func rawInt(m map[string]any, keys ...string) *int64 {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		if n, ok := toInt64(v); ok {
			return &n
		}
	}
	return nil
}

// rawFloat returns the first numeric value among keys as float64, or nil.
func rawFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		if f, ok := toFloat64(v); ok {
			return &f
		}
	}
	return nil
}

func rawBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := lookupPath(m, k); ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

func rawMap(m map[string]any, key string) map[string]any {
	v, _ := lookupPath(m, key)
	out, _ := v.(map[string]any)
	return out
}

func rawSlice(m map[string]any, key string) []any {
	v, _ := lookupPath(m, key)
	out, _ := v.([]any)
	return out
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
