package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	cases := map[string]string{
		`{"query": "[.items[].path] | unique"}`:         "[.items[].path] | unique",
		"  \n{\"query\": \".\"}\n":                      ".",
		"```json\n{\"query\": \".a | keys\"}\n```":      ".a | keys",
		"```\n{\"query\": \".a\"}\n```":                 ".a",
		`{"query": "  .b  ", "explanation": "ignored"}`: ".b",
		`{"query": ".x > 1 and .y < 2"}`:                ".x > 1 and .y < 2",
	}
	for in, want := range cases {
		got, err := ParseEnvelope(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseEnvelopeMalformed(t *testing.T) {
	for _, in := range []string{
		"not-json",
		"",
		"   ",
		"```",
		`.items[].path`,
		`{"query": ".a"} trailing`,
		`["query"]`,
		`{"query": 42}`,
	} {
		_, err := ParseEnvelope(in)
		assert.ErrorIs(t, err, ErrMalformedEnvelope, "%q", in)
	}
}

func TestParseEnvelopeMissingQuery(t *testing.T) {
	for _, in := range []string{`{}`, `{"jq": "."}`, `{"query": ""}`, `{"query": null}`, `{"query": "   "}`} {
		_, err := ParseEnvelope(in)
		assert.ErrorIs(t, err, ErrMissingQuery, "%q", in)
	}
}
