package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedEnvelope means the model text was not a JSON object.
	ErrMalformedEnvelope = errors.New("synth: model reply is not a JSON envelope")
	// ErrMissingQuery means the envelope had no usable "query" field.
	ErrMissingQuery = errors.New(`synth: model reply has no "query" field`)
)

type envelope struct {
	Query *string `json:"query"`
}

// ParseEnvelope extracts the jq expression from a model reply of the form
// {"query": "..."}. Surrounding whitespace and a single markdown fence are
// tolerated; anything else that is not a JSON object fails.
func ParseEnvelope(text string) (string, error) {
	s := stripFence(strings.TrimSpace(text))
	if s == "" {
		return "", ErrMalformedEnvelope
	}
	var env envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Query == nil || strings.TrimSpace(*env.Query) == "" {
		return "", ErrMissingQuery
	}
	return strings.TrimSpace(*env.Query), nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
