package jq

import "math"

// normalizeFloats rewrites non-finite numbers the way jq prints them: NaN
// becomes null and ±Inf becomes ±math.MaxFloat64. Containers are copied
// only when something inside them changes, so v is never mutated.
func normalizeFloats(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return nil, true
		case math.IsInf(x, 1):
			return math.MaxFloat64, true
		case math.IsInf(x, -1):
			return -math.MaxFloat64, true
		}
		return x, false
	case []any:
		var out []any
		for i, e := range x {
			n, changed := normalizeFloats(e)
			if changed && out == nil {
				out = make([]any, len(x))
				copy(out, x)
			}
			if out != nil {
				out[i] = n
			}
		}
		if out == nil {
			return x, false
		}
		return out, true
	case map[string]any:
		var out map[string]any
		for k, e := range x {
			n, changed := normalizeFloats(e)
			if !changed {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(x))
				for kk, ee := range x {
					out[kk] = ee
				}
			}
			out[k] = n
		}
		if out == nil {
			return x, false
		}
		return out, true
	default:
		return v, false
	}
}
