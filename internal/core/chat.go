package core

import (
	"context"

	"screening-datagen/internal/llm"
)

// Speaker generates one side of the conversation. Each speaker keeps its own
// chat history: its inputs go in as user turns and its replies as assistant
// turns.
type Speaker struct {
	Agent    string
	LLM      llm.Client
	System   string
	Params   CallParams
	Fallback string

	history []llm.Message
}

// CallParams are the sampling parameters of one kind of call.
type CallParams struct {
	Temperature *float64
	MaxTokens   int
}

// NewSpeaker constructs a Speaker with an empty history.
func NewSpeaker(agent string, client llm.Client, system string, params CallParams, fallback string) *Speaker {
	return &Speaker{Agent: agent, LLM: client, System: system, Params: params, Fallback: fallback}
}

// Reply generates the speaker's next line for input. This is a blocking
// call that delegates to the LLM. On error or an empty response the
// fallback line is returned together with the error, so the conversation
// can continue. Both input and reply are appended to the history.
func (s *Speaker) Reply(ctx context.Context, input string) (string, llm.Completion, error) {
	out, err := s.LLM.Complete(ctx, llm.Request{
		System:      s.System,
		History:     s.history,
		Input:       input,
		Temperature: s.Params.Temperature,
		MaxTokens:   s.Params.MaxTokens,
	})
	reply := out.Text
	if err != nil || reply == "" {
		reply = s.Fallback
	}
	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: input},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	return reply, out, err
}

// Seed records a line the speaker said without a call, such as the scripted
// greeting.
func (s *Speaker) Seed(reply string) {
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
}

// History returns a copy of the speaker's chat history.
func (s *Speaker) History() []llm.Message {
	return append([]llm.Message(nil), s.history...)
}
