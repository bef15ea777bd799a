package assessment

import (
	"github.com/chaspy/toeic-assessment-poc/internal/feedback"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/scoring"
	"github.com/chaspy/toeic-assessment-poc/internal/session"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

// Disclaimer is attached to every result.
const Disclaimer = "TOEIC is a registered trademark of ETS. This product is not endorsed or approved by ETS."

// Result is the scored outcome of a session.
type Result struct {
	RawCorrect    int               `json:"raw_correct"`
	ScaledReading int               `json:"scaled_reading"`
	ProvisionalCI [2]int            `json:"provisional_ci"`
	CEFR          scoring.Band      `json:"cefr"`
	Insights      []feedback.Advice `json:"insights"`
	Disclaimer    string            `json:"disclaimer"`
	Responses     []Response        `json:"responses"`
}

// Response is the per-item detail of a result. Selected and Correct are
// null for items that were never answered.
type Response struct {
	ItemID      string    `json:"itemId"`
	Part        item.Part `json:"part"`
	Stem        string    `json:"stem"`
	Options     []string  `json:"options"`
	Answer      int       `json:"answer"`
	Selected    *int      `json:"selected"`
	Correct     *bool     `json:"correct"`
	Explanation string    `json:"explanation"`
	Rationales  []string  `json:"rationales"`
}

// StartOutput is returned when a session begins.
type StartOutput struct {
	SessionID string      `json:"sessionId"`
	Items     []item.Item `json:"items"`
}

// AnswerInput is one submitted answer.
type AnswerInput struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
	Selected  int    `json:"selected"`
	RtMs      int64  `json:"rtMs"`
}

// NextOutput carries the next unanswered item, or null when none is left.
type NextOutput struct {
	NextItem *item.Item `json:"nextItem"`
}

// InsightsOutput is the standalone advice for a session.
type InsightsOutput struct {
	Insights []feedback.Advice `json:"insights"`
}

// ExplainOutput is the explanation of one item.
type ExplainOutput struct {
	ItemID      string `json:"itemId"`
	Explanation string `json:"explanation"`
}

// scored holds everything derived from a session's current answers.
type scored struct {
	result  Result
	weakest []skills.Candidate
}

// score computes the result for the session's current answer set, without
// insights. It is pure: the same session always scores the same.
func score(scale scoring.Scale, s session.Session[Result], weakest int) scored {
	answers := make(map[string]session.AnswerEvent, len(s.Answers))
	outcomes := make([]skills.Outcome, 0, len(s.Answers))
	raw := 0
	for _, a := range s.Answers {
		if _, _, ok := s.Item(a.ItemID); !ok {
			continue
		}
		answers[a.ItemID] = a
		outcomes = append(outcomes, skills.Outcome{ItemID: a.ItemID, Correct: a.Correct})
		if a.Correct {
			raw++
		}
	}

	responses := make([]Response, 0, len(s.Items))
	for _, it := range s.Items {
		r := Response{
			ItemID:      it.ID,
			Part:        it.Part,
			Stem:        it.Stem,
			Options:     it.Options,
			Answer:      it.Answer,
			Explanation: it.Explanation,
			Rationales:  it.Rationales,
		}
		if r.Rationales == nil {
			r.Rationales = []string{}
		}
		if a, ok := answers[it.ID]; ok {
			selected, correct := a.Selected, a.Correct
			r.Selected = &selected
			r.Correct = &correct
		}
		responses = append(responses, r)
	}

	scaled := scale.Scaled(raw)
	low, high := scale.ConfidenceInterval(scaled)
	return scored{
		result: Result{
			RawCorrect:    raw,
			ScaledReading: scaled,
			ProvisionalCI: [2]int{low, high},
			CEFR:          scoring.BandFromScore(scaled),
			Insights:      []feedback.Advice{},
			Disclaimer:    Disclaimer,
			Responses:     responses,
		},
		weakest: skills.RankWeakest(s.Items, outcomes, weakest),
	}
}
