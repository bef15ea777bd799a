package telemetry

import (
	"context"
	"fmt"
)

const (
	tableEvents      = "assessment_events"
	tableResults     = "assessment_results"
	tableLLMRequests = "llm_requests"
)

// schema holds the DDL for the telemetry tables. Column types are valid on
// both SQLite and Postgres; timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableEvents + ` (
		sequence   BIGINT      NOT NULL PRIMARY KEY,
		event      VARCHAR(64) NOT NULL,
		session_id VARCHAR(64) NOT NULL,
		payload    TEXT        NOT NULL,
		ts_ms      BIGINT      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_` + tableEvents + `_session ON ` + tableEvents + ` (session_id)`,
	`CREATE TABLE IF NOT EXISTS ` + tableResults + ` (
		session_id     VARCHAR(64) NOT NULL PRIMARY KEY,
		raw_correct    INTEGER     NOT NULL,
		scaled_reading INTEGER     NOT NULL,
		cefr           VARCHAR(16) NOT NULL,
		payload        TEXT        NOT NULL,
		finished_ms    BIGINT      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + tableLLMRequests + ` (
		sequence      BIGINT       NOT NULL PRIMARY KEY,
		provider      VARCHAR(64)  NOT NULL,
		model         VARCHAR(128) NOT NULL,
		purpose       VARCHAR(64)  NOT NULL,
		session_id    VARCHAR(64)  NOT NULL,
		input_tokens  INTEGER      NOT NULL,
		output_tokens INTEGER      NOT NULL,
		latency_ms    BIGINT       NOT NULL,
		success       BOOLEAN      NOT NULL,
		error_message TEXT         NOT NULL,
		request_body  TEXT         NOT NULL,
		response_body TEXT         NOT NULL,
		ts_ms         BIGINT       NOT NULL
	)`,
}

// migrate creates the telemetry tables if they do not exist.
func (s *Store) migrate(ctx context.Context) error {
	for _, q := range schema {
		if err := s.drv.Exec(ctx, q, []any{}, nil); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
