package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SaveResult stores a finished result, replacing any earlier export for the
// same session.
func (s *Store) SaveResult(ctx context.Context, r Result) error {
	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	q, args := s.builder().Insert(tableResults).
		Columns("session_id", "raw_correct", "scaled_reading", "cefr", "payload", "finished_ms").
		Values(r.SessionID, r.RawCorrect, r.ScaledReading, r.CEFR, string(r.Payload), finished.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("session_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save result %s: %w", r.SessionID, err)
	}
	return nil
}

// GetResult returns the stored result for a session.
func (s *Store) GetResult(ctx context.Context, sessionID string) (*Result, error) {
	b := s.builder()
	q, args := b.Select("session_id", "raw_correct", "scaled_reading", "cefr", "payload", "finished_ms").
		From(b.Table(tableResults)).
		Where(entsql.EQ("session_id", sessionID)).
		Query()
	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: result for session %s", ErrNotFound, sessionID)
	}
	var (
		r          Result
		payload    string
		finishedMs int64
	)
	if err := rows.Scan(&r.SessionID, &r.RawCorrect, &r.ScaledReading, &r.CEFR, &payload, &finishedMs); err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	r.Payload = json.RawMessage(payload)
	r.FinishedAt = time.UnixMilli(finishedMs)
	return &r, nil
}

// ListResults returns stored results, most recently finished first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]Result, error) {
	b := s.builder()
	sel := b.Select("session_id", "raw_correct", "scaled_reading", "cefr", "finished_ms").
		From(b.Table(tableResults)).
		OrderBy(entsql.Desc("finished_ms"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()
	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r          Result
			finishedMs int64
		)
		if err := rows.Scan(&r.SessionID, &r.RawCorrect, &r.ScaledReading, &r.CEFR, &finishedMs); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.FinishedAt = time.UnixMilli(finishedMs)
		out = append(out, r)
	}
	return out, rows.Err()
}
