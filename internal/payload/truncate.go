package payload

// DefaultMaxArrayLength bounds arrays in the prompt copy unless configured otherwise.
const DefaultMaxArrayLength = 3

// Truncate returns a copy of v in which every array holds at most
// maxArrayLength elements. Object keys and scalar leaves are preserved.
// v itself is never modified.
func Truncate(v any, maxArrayLength int) any {
	if maxArrayLength < 0 {
		maxArrayLength = 0
	}
	switch x := v.(type) {
	case []any:
		n := len(x)
		if n > maxArrayLength {
			n = maxArrayLength
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = Truncate(x[i], maxArrayLength)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = Truncate(vv, maxArrayLength)
		}
		return out
	default:
		return v
	}
}
