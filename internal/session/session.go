// Package session holds live assessment sessions in memory.
package session

import (
	"time"

	"github.com/chaspy/toeic-assessment-poc/internal/item"
)

// AnswerEvent is one recorded answer. A session holds at most one event per
// item; a later submission replaces the earlier one.
type AnswerEvent struct {
	SessionID string    `json:"sessionId"`
	ItemID    string    `json:"itemId"`
	Selected  int       `json:"selected"`
	Correct   bool      `json:"correct"`
	RtMs      int64     `json:"rtMs"`
	Ts        time.Time `json:"ts"`
}

// Session is one learner's assessment attempt. R is the stored result type.
type Session[R any] struct {
	ID         string
	Items      []item.Item
	Answers    []AnswerEvent // in order of first submission
	CreatedAt  time.Time
	FinishedAt *time.Time
	Result     *R

	// Revision counts changes to Answers and Result. A result scored from a
	// snapshot may only be stored while the revision is unchanged.
	Revision int
}

// Finished reports whether a result has been stored.
func (s *Session[R]) Finished() bool {
	return s.FinishedAt != nil
}

// Item returns the session item with the given id and its 0-based position.
func (s *Session[R]) Item(id string) (item.Item, int, bool) {
	for i, it := range s.Items {
		if it.ID == id {
			return it, i, true
		}
	}
	return item.Item{}, -1, false
}

// Answer returns the recorded answer for itemID.
func (s *Session[R]) Answer(itemID string) (AnswerEvent, bool) {
	for _, a := range s.Answers {
		if a.ItemID == itemID {
			return a, true
		}
	}
	return AnswerEvent{}, false
}

// Record stores ev, replacing any earlier answer for the same item in place.
func (s *Session[R]) Record(ev AnswerEvent) {
	s.Revision++
	for i := range s.Answers {
		if s.Answers[i].ItemID == ev.ItemID {
			s.Answers[i] = ev
			return
		}
	}
	s.Answers = append(s.Answers, ev)
}

// NextUnanswered returns the first item in assigned order without an answer.
func (s *Session[R]) NextUnanswered() *item.Item {
	answered := make(map[string]struct{}, len(s.Answers))
	for _, a := range s.Answers {
		answered[a.ItemID] = struct{}{}
	}
	for i := range s.Items {
		if _, ok := answered[s.Items[i].ID]; !ok {
			it := s.Items[i]
			return &it
		}
	}
	return nil
}

// snapshot copies the mutable parts so callers never alias store state.
// Items are immutable and shared.
func (s *Session[R]) snapshot() Session[R] {
	out := *s
	out.Answers = append([]AnswerEvent(nil), s.Answers...)
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return out
}
