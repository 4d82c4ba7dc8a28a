package llm

import "context"

// Message is a minimal chat message.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request is one text-generation call: system instructions, the caller's
// prior exchanges, the new user input and sampling parameters.
type Request struct {
	System      string
	History     []Message
	Input       string
	Temperature *float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response. Callers still
	// validate the output themselves.
	JSON bool
}

// Usage counts tokens consumed by a call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Completion is the text returned by a call plus its usage.
type Completion struct {
	Text  string
	Usage Usage
}

// Client is the synchronous text-generation service consumed by the
// generators. Implementations must not retain req after returning.
type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (Completion, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (Completion, error) {
	return f(ctx, req)
}

// Float returns a pointer to v for Request.Temperature.
func Float(v float64) *float64 { return &v }
