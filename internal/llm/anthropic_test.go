package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropicProvider(t *testing.T, model string, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := newAnthropicProviderRaw(AnthropicConfig{APIKey: "test-key", Model: model, BaseURL: server.URL})
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicFailure(status int, errType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "3")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": errType, "message": errType},
		})
	}
}

func TestAnthropicProvider_Explanation(t *testing.T) {
	var body map[string]any
	p := newTestAnthropicProvider(t, "gateway/claude-haiku", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"explanation":"Passive voice needs was + past participle."}`, "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a TOEIC reading coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Explain the answer to item r5-003."}},
		Schema:    testExplanationSchema(),
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "gateway/claude-haiku", body["model"], "raw model IDs are sent as given")
	assert.NotNil(t, body["output_config"])
	assert.JSONEq(t, `{"explanation":"Passive voice needs was + past participle."}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
}

func TestAnthropicProvider_TruncatedOutput(t *testing.T) {
	p := newTestAnthropicProvider(t, "claude-haiku-4-5-20251001", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"explanation":"Passive vo`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "explain"}},
		Schema:    testExplanationSchema(),
		MaxTokens: 8,
	})
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.False(t, transient(err))
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name:    "rate limit carries retry-after",
			handler: anthropicFailure(http.StatusTooManyRequests, "rate_limit_error"),
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 3*time.Second, rl.RetryAfter)
			},
		},
		{
			name:    "server error is unavailable",
			handler: anthropicFailure(http.StatusInternalServerError, "api_error"),
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				require.ErrorAs(t, err, &unavail)
			},
		},
		{
			name:    "bad key is rejected",
			handler: anthropicFailure(http.StatusUnauthorized, "authentication_error"),
			check: func(t *testing.T, err error) {
				var rejected *ErrRejected
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, http.StatusUnauthorized, rejected.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, "claude-haiku-4-5-20251001", tt.handler)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			tt.check(t, err)
		})
	}
}

func TestNewAnthropicProvider(t *testing.T) {
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.ModelID())

	p, err = NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", p.ModelID())

	_, err = NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)
	_, err = NewAnthropicProvider(AnthropicConfig{APIKey: "k"})
	assert.Error(t, err)
}

func testExplanationSchema() *Schema {
	return &Schema{
		Name: "provider-test-explanation",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"explanation": map[string]any{"type": "string"}},
			"required":             []any{"explanation"},
			"additionalProperties": false,
		},
	}
}
