package telemetry

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmColumns = []string{
	"sequence", "provider", "model", "purpose", "session_id", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body", "ts_ms",
}

// AppendLLMRequest records an LLM API call.
func (s *Store) AppendLLMRequest(ctx context.Context, req LLMRequest) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	q, args := s.builder().Insert(tableLLMRequests).
		Columns(llmColumns...).
		Values(seq, req.Provider, req.Model, req.Purpose, req.SessionID, req.InputTokens, req.OutputTokens,
			req.LatencyMs, req.Success, req.ErrorMessage, req.RequestBody, req.ResponseBody,
			time.Now().UnixMilli()).
		Query()
	if err := s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMRequests returns LLM requests newest first. Event does not apply.
func (s *Store) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error) {
	b := s.builder()
	sel := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)
	return s.scanLLMRequests(ctx, sel)
}

// GetLLMRequest returns the request with the given id.
func (s *Store) GetLLMRequest(ctx context.Context, id int64) (*LLMRequestRecord, error) {
	b := s.builder()
	sel := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		Where(entsql.EQ("sequence", id))
	recs, err := s.scanLLMRequests(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: LLM request %d", ErrNotFound, id)
	}
	return &recs[0], nil
}

func (s *Store) scanLLMRequests(ctx context.Context, sel *entsql.Selector) ([]LLMRequestRecord, error) {
	q, args := sel.Query()
	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestRecord
	for rows.Next() {
		var (
			r    LLMRequestRecord
			tsMs int64
		)
		if err := rows.Scan(&r.ID, &r.Provider, &r.Model, &r.Purpose, &r.SessionID, &r.InputTokens, &r.OutputTokens,
			&r.LatencyMs, &r.Success, &r.ErrorMessage, &r.RequestBody, &r.ResponseBody, &tsMs); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		r.Timestamp = time.UnixMilli(tsMs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LLMUsageByPurpose aggregates calls and tokens per purpose.
func (s *Store) LLMUsageByPurpose(ctx context.Context) ([]UsageStat, error) {
	return s.llmUsage(ctx, "purpose")
}

// LLMUsageByModel aggregates calls and tokens per model.
func (s *Store) LLMUsageByModel(ctx context.Context) ([]UsageStat, error) {
	return s.llmUsage(ctx, "model")
}

func (s *Store) llmUsage(ctx context.Context, groupBy string) ([]UsageStat, error) {
	b := s.builder()
	q, args := b.Select(
		groupBy,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Sum("latency_ms"), "latency_ms"),
	).
		From(b.Table(tableLLMRequests)).
		GroupBy(groupBy).
		OrderBy(groupBy).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var out []UsageStat
	for rows.Next() {
		var (
			st        UsageStat
			key       string
			inTok     int64
			outTok    int64
			latencyMs int64
		)
		if err := rows.Scan(&key, &st.Calls, &inTok, &outTok, &latencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		if groupBy == "purpose" {
			st.Purpose = key
		} else {
			st.Model = key
		}
		st.InputTokens = int(inTok)
		st.OutputTokens = int(outTok)
		if st.Calls > 0 {
			st.AvgLatencyMs = latencyMs / int64(st.Calls)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
