package llm

import (
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding markdown code fence (```json or ```)
// from a model response.
func StripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// DecodeJSON strips fences from s and unmarshals it into v.
func DecodeJSON(s string, v any) error {
	return json.Unmarshal([]byte(StripFences(s)), v)
}
