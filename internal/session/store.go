package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chaspy/toeic-assessment-poc/internal/item"
)

var (
	// ErrNotFound is returned for operations on an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrStale is returned when a result was scored from an older revision
	// of the session than the one stored.
	ErrStale = errors.New("session changed since it was read")
)

type entry[R any] struct {
	mu sync.Mutex
	s  Session[R]
}

// Store is a concurrency-safe registry of sessions. The registry lock guards
// the map only; each session has its own lock so work on different sessions
// never contends.
type Store[R any] struct {
	mu       sync.RWMutex
	sessions map[string]*entry[R]
	now      func() time.Time
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// NewStore returns an empty store.
func NewStore[R any](opts ...Option) *Store[R] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[R]{
		sessions: make(map[string]*entry[R]),
		now:      o.now,
	}
}

// Create registers a new session over items and returns a snapshot of it.
func (st *Store[R]) Create(items []item.Item) Session[R] {
	e := &entry[R]{s: Session[R]{
		ID:        uuid.NewString(),
		Items:     items,
		CreatedAt: st.now(),
	}}

	st.mu.Lock()
	for {
		// A v4 collision is practically impossible, but never overwrite.
		if _, exists := st.sessions[e.s.ID]; !exists {
			break
		}
		e.s.ID = uuid.NewString()
	}
	st.sessions[e.s.ID] = e
	st.mu.Unlock()

	return e.s.snapshot()
}

// Get returns a snapshot of the session.
func (st *Store[R]) Get(id string) (Session[R], error) {
	e, err := st.lookup(id)
	if err != nil {
		return Session[R]{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.snapshot(), nil
}

// RecordAnswer upserts ev by item id. It does not check that the item
// belongs to the session.
func (st *Store[R]) RecordAnswer(id string, ev AnswerEvent) error {
	return st.Update(id, func(s *Session[R]) error {
		ev.SessionID = s.ID
		s.Record(ev)
		return nil
	})
}

// NextUnanswered returns the first assigned item without an answer, or nil
// when every item has been answered.
func (st *Store[R]) NextUnanswered(id string) (*item.Item, error) {
	e, err := st.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.NextUnanswered(), nil
}

// MarkFinished stores result, overwriting any earlier one, provided the
// session is still at revision. Otherwise it returns ErrStale and leaves
// the session untouched.
func (st *Store[R]) MarkFinished(id string, revision int, result R) error {
	return st.Update(id, func(s *Session[R]) error {
		if s.Revision != revision {
			return fmt.Errorf("%w: %s at revision %d, result from %d", ErrStale, id, s.Revision, revision)
		}
		s.Revision++
		t := st.now()
		s.FinishedAt = &t
		s.Result = &result
		return nil
	})
}

// Update runs fn with exclusive access to the session. Changes made by fn
// are kept even if it returns an error, so fn should validate before it
// mutates.
func (st *Store[R]) Update(id string, fn func(*Session[R]) error) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.s)
}

// Len returns the number of live sessions.
func (st *Store[R]) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store[R]) lookup(id string) (*entry[R], error) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// RecordedAnswer builds an AnswerEvent for it, deriving correctness.
func RecordedAnswer(it item.Item, selected int, rtMs int64, ts time.Time) AnswerEvent {
	return AnswerEvent{
		ItemID:   it.ID,
		Selected: selected,
		Correct:  it.IsCorrect(selected),
		RtMs:     rtMs,
		Ts:       ts,
	}
}
