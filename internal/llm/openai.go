package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient calls the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed client. An empty model falls
// back to gpt-4.1-mini; an empty BaseURL uses the public endpoint.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

// Model returns the model the client sends requests to.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends the system prompt, history and input to the chat completion
// API and returns the assistant's response.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Completion, error) {
	if c.client == nil {
		return Completion{}, errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.History {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Input})

	creq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: oaMsgs,
	}
	// Reasoning models reject custom temperature and max_tokens.
	if !IsReasoningModel(c.model) {
		if req.Temperature != nil {
			creq.Temperature = float32(*req.Temperature)
		}
		creq.MaxTokens = req.MaxTokens
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return Completion{}, err
	}
	out := Completion{Usage: Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}}
	if len(resp.Choices) == 0 {
		return out, nil
	}
	out.Text = resp.Choices[0].Message.Content
	return out, nil
}

// IsReasoningModel reports whether model only accepts default sampling
// parameters.
func IsReasoningModel(model string) bool {
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
