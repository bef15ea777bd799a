package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// LoggingProvider is a decorator that records every LLM request to the
// telemetry sink and the structured log.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     telemetry.Sink
	logger   *zap.Logger
}

// WithLogging wraps a Provider with request logging. provider is the
// configured provider name recorded alongside the model.
func WithLogging(p Provider, provider string, sink telemetry.Sink, logger *zap.Logger) Provider {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: provider, sink: sink, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)
	sessionID := SessionFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	rec := telemetry.LLMRequest{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		SessionID:   sessionID,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			rec.Model = resp.Model
		}
		rec.ResponseBody = string(resp.Content)
	}

	fields := []zap.Field{
		zap.String("provider", l.provider),
		zap.String("model", rec.Model),
		zap.String("purpose", purpose),
		zap.String("session_id", sessionID),
		zap.Int64("latency_ms", latencyMs),
		zap.Int("input_tokens", rec.InputTokens),
		zap.Int("output_tokens", rec.OutputTokens),
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("llm request", fields...)
	}

	// The request outcome is what matters; a telemetry failure is only logged.
	if logErr := l.sink.AppendLLMRequest(context.WithoutCancel(ctx), rec); logErr != nil {
		l.logger.Warn("failed to record LLM request", zap.Error(logErr))
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		if schemaDef, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
