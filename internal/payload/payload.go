// Package payload validates the caller's JSON input and produces the
// bounded copy that is shown to the LLM.
package payload

import (
	"bytes"
	"strings"

	"jqery/internal/apierr"
	"jqery/internal/util/jsonutil"
)

// Source records where a payload came from.
type Source string

const (
	SourceFile Source = "file"
	SourceText Source = "text"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawPayload is caller-supplied JSON text that is known to parse.
type RawPayload struct {
	Text   string
	Source Source
}

// Bytes returns the payload text as a byte slice.
func (p RawPayload) Bytes() []byte { return []byte(p.Text) }

// Decode parses the payload into its generic tree form.
func (p RawPayload) Decode() (any, error) {
	return jsonutil.Decode([]byte(p.Text))
}

// Normalize picks the effective JSON source and validates it. A non-empty
// upload wins over pasted text; whitespace-only text counts as absent.
func Normalize(file []byte, pasted string) (RawPayload, error) {
	if len(bytes.TrimSpace(file)) > 0 {
		text := bytes.TrimPrefix(file, utf8BOM)
		if _, err := jsonutil.Decode(text); err != nil {
			return RawPayload{}, apierr.InvalidInput("invalid JSON in uploaded file", err)
		}
		return RawPayload{Text: string(text), Source: SourceFile}, nil
	}
	if strings.TrimSpace(pasted) != "" {
		if _, err := jsonutil.Decode([]byte(pasted)); err != nil {
			return RawPayload{}, apierr.InvalidInput("invalid JSON in pasted text", err)
		}
		return RawPayload{Text: pasted, Source: SourceText}, nil
	}
	return RawPayload{}, apierr.MissingInput("no JSON provided: upload a file or paste JSON text")
}
