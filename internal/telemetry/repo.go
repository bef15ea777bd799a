package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a queried record does not exist.
var ErrNotFound = errors.New("telemetry record not found")

// EventType names a session lifecycle event.
type EventType string

const (
	EventAssessmentStarted  EventType = "assessment_started"
	EventAnswerSubmitted    EventType = "answer_submitted"
	EventAssessmentFinished EventType = "assessment_finished"
)

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	SessionID string    // exact match when set
	Event     EventType // exact match when set
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
}

// Event is one session lifecycle event with a free-form payload.
type Event struct {
	Type      EventType
	SessionID string
	Payload   map[string]any
	Timestamp time.Time
}

// EventRecord is a stored Event.
type EventRecord struct {
	Sequence  int64
	Type      EventType
	SessionID string
	Payload   json.RawMessage
	Timestamp time.Time
}

// Result is a finished assessment as exported to telemetry. Payload is the
// full result document; the other fields are copied out for querying.
type Result struct {
	SessionID     string
	RawCorrect    int
	ScaledReading int
	CEFR          string
	Payload       json.RawMessage
	FinishedAt    time.Time
}

// LLMRequest captures a single LLM API call.
type LLMRequest struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string // empty when the request is not tied to a session
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRecord is a stored LLMRequest.
type LLMRequestRecord struct {
	LLMRequest
	ID        int64 // the global sequence
	Timestamp time.Time
}

// UsageStat aggregates LLM usage for one purpose or model.
type UsageStat struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Sink is the write side used by the engine and the LLM logging decorator.
type Sink interface {
	AppendEvent(ctx context.Context, ev Event) error
	SaveResult(ctx context.Context, r Result) error
	AppendLLMRequest(ctx context.Context, req LLMRequest) error
}

// Nop is a Sink that drops everything.
type Nop struct{}

func (Nop) AppendEvent(context.Context, Event) error           { return nil }
func (Nop) SaveResult(context.Context, Result) error           { return nil }
func (Nop) AppendLLMRequest(context.Context, LLMRequest) error { return nil }

var _ Sink = (*Store)(nil)
