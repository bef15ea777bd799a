package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AppendEvent records a session lifecycle event.
func (s *Store) AppendEvent(ctx context.Context, ev Event) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	payload := ev.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	q, args := s.builder().Insert(tableEvents).
		Columns("sequence", "event", "session_id", "payload", "ts_ms").
		Values(seq, string(ev.Type), ev.SessionID, string(body), ts.UnixMilli()).
		Query()
	if err := s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save %s event: %w", ev.Type, err)
	}
	return nil
}

// QueryEvents returns events newest first.
func (s *Store) QueryEvents(ctx context.Context, opts QueryOpts) ([]EventRecord, error) {
	b := s.builder()
	sel := b.Select("sequence", "event", "session_id", "payload", "ts_ms").
		From(b.Table(tableEvents)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)
	if opts.Event != "" {
		sel.Where(entsql.EQ("event", string(opts.Event)))
	}

	q, args := sel.Query()
	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			r       EventRecord
			event   string
			payload string
			tsMs    int64
		)
		if err := rows.Scan(&r.Sequence, &event, &r.SessionID, &payload, &tsMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		r.Type = EventType(event)
		r.Payload = json.RawMessage(payload)
		r.Timestamp = time.UnixMilli(tsMs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// applyOpts adds the filters shared by sequence-keyed tables.
func applyOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("ts_ms", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("ts_ms", opts.To.UnixMilli()))
	}
}
