package llm

import (
	"context"
	"encoding/json"
)

// Provider generates feedback text from a language model.
type Provider interface {
	// Generate sends one prompt. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is a single-turn prompt: a system prompt and the learner's data
// as one user message.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured JSON output. Nil means free text, returned
	// as a raw JSON value.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the prompt.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output. Name is sent as the
// OpenAI schema name and keys the compiled-schema cache, e.g. "skill-advice".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is why the model stopped, normalised across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a completed generation.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that served the request, when reported
	StopReason StopReason
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns raw provider output into a Response. Truncated output is
// never returned as a result since advice JSON cut short cannot be used.
func finish(req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a friendly name such as "claude-haiku" to a model ID.
// Unknown names are treated as model IDs.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
