package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

type recordingSink struct {
	telemetry.Nop
	mu   sync.Mutex
	reqs []telemetry.LLMRequest
	err  error
}

func (s *recordingSink) AppendLLMRequest(_ context.Context, req telemetry.LLMRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return s.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	sink := &recordingSink{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"advice":[]}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	p := WithLogging(mock, ProviderMock, sink, zap.NewNop())

	ctx := WithSession(WithPurpose(context.Background(), "advice"), "s-9")
	_, err := p.Generate(ctx, Request{
		System:   "coach",
		Messages: []Message{{Role: RoleUser, Content: "weak skills"}},
		Schema:   &Schema{Name: "skill-advice", Definition: map[string]any{"type": "object"}},
	})
	require.NoError(t, err)

	require.Len(t, sink.reqs, 1)
	rec := sink.reqs[0]
	assert.Equal(t, ProviderMock, rec.Provider)
	assert.Equal(t, "mock", rec.Model)
	assert.Equal(t, "advice", rec.Purpose)
	assert.Equal(t, "s-9", rec.SessionID)
	assert.True(t, rec.Success)
	assert.Equal(t, 12, rec.InputTokens)
	assert.Equal(t, 7, rec.OutputTokens)
	assert.Contains(t, rec.RequestBody, "[system]\ncoach")
	assert.Contains(t, rec.RequestBody, "[user]\nweak skills")
	assert.Contains(t, rec.RequestBody, "[schema: skill-advice]")
	assert.JSONEq(t, `{"advice":[]}`, rec.ResponseBody)
}

func TestLoggingProvider_RecordsFailureAndIgnoresSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(), ProviderMock, sink, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	require.Len(t, sink.reqs, 1)
	assert.False(t, sink.reqs[0].Success)
	assert.NotEmpty(t, sink.reqs[0].ErrorMessage)
	assert.Equal(t, "unknown", sink.reqs[0].Purpose)
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)

	cfg.Provider = ProviderOpenAI
	cfg.OpenAI.APIKey = "sk-test"
	p, err = NewProvider(context.Background(), cfg, telemetry.Nop{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &TimeoutProvider{}, p)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())

	cfg.Provider = "bogus"
	_, err = NewProvider(context.Background(), cfg, nil, nil)
	require.Error(t, err)
}
