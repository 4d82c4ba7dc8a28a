package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  \n{\"a\":1}  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	if err := DecodeJSON("```json\n{\"a\": 3}\n```", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.A != 3 {
		t.Fatalf("expected 3, got %d", out.A)
	}
	if err := DecodeJSON("not json", &out); err == nil {
		t.Fatal("expected error for malformed input")
	}
}
