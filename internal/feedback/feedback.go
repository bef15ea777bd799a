// Package feedback turns weak-skill statistics into learner-facing advice
// and explains individual items.
package feedback

import (
	"context"
	"errors"

	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

// ErrUnavailable is returned when advice or an explanation could not be
// produced: the provider failed after its retries or returned output that
// did not validate.
var ErrUnavailable = errors.New("feedback generation unavailable")

// Advice is the personalized guidance for one weak skill.
type Advice struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Meaning  string   `json:"meaning"`
	Read     string   `json:"read"`
	Practice []string `json:"practice"`
	Examples []int    `json:"examples"` // 1-based item positions answered wrong
}

// AdviceInput is what advice is generated from.
type AdviceInput struct {
	SessionID     string
	ScaledReading int
	CEFR          string
	Weakest       []skills.Candidate
}

// Generator produces advice for the weakest skills of a session.
type Generator interface {
	GenerateAdvice(ctx context.Context, in AdviceInput) ([]Advice, error)
}

// ExplainInput describes the answer to explain.
type ExplainInput struct {
	SessionID string
	Item      item.Item
	Position  int // 1-based position in the session
	Selected  int // learner's choice
}

// Explainer writes a short explanation for an item the learner answered.
type Explainer interface {
	Explain(ctx context.Context, in ExplainInput) (string, error)
}

// fromCatalog builds advice purely from the skill catalog.
func fromCatalog(catalog *skills.Catalog, c skills.Candidate) Advice {
	meta := catalog.Lookup(c.Skill)
	return Advice{
		Key:      c.Skill,
		Label:    meta.Label,
		Meaning:  meta.Meaning,
		Read:     meta.Read,
		Practice: append([]string(nil), meta.Practice...),
		Examples: examplesOf(c),
	}
}

func examplesOf(c skills.Candidate) []int {
	if c.Examples == nil {
		return []int{}
	}
	return append([]int(nil), c.Examples...)
}
