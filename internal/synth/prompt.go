package synth

import (
	"fmt"
	"strings"
)

// SystemPrompt constrains the model to a single JSON envelope holding a jq
// expression. The fallback to "." for unrelated requests lives only here.
const SystemPrompt = "You are a perfect jq engineer designed to validate and extract data from JSON documents using jq. " +
	`Only reply with a single JSON object of the form {"query": "<jq expression>"}. ` +
	"Do NOT use any natural language. Do NOT use markdown, i.e. no ``` code fences. " +
	`If the request is unrelated to the JSON content, reply with {"query": "."} so the whole input is returned unchanged.`

// BuildUserMessage embeds the JSON document and the intent verbatim.
func BuildUserMessage(jsonText, intent string) string {
	var b strings.Builder
	b.WriteString("Your task is to generate a jq command to extract the data from the following JSON:\n")
	b.WriteString(jsonText)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Your task is to help create a jq query which lets me %s from the above JSON\n\n", intent)
	b.WriteString("Only reply with json. No need to provide any explanation. The output json format should be:\n")
	b.WriteString(`{"query": <jq command to get the result>}`)
	b.WriteString("\n")
	return b.String()
}
