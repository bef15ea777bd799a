// Package skills aggregates per-skill answer statistics and ranks the
// learner's weakest skills.
package skills

import (
	"sort"

	"github.com/chaspy/toeic-assessment-poc/internal/item"
)

// maxExamples caps the item positions reported per weak skill.
const maxExamples = 5

// DefaultWeakest is how many weak skills feedback is built from.
const DefaultWeakest = 3

// Outcome is one recorded answer as the aggregator sees it.
type Outcome struct {
	ItemID  string
	Correct bool
}

// Stat counts answers touching one skill tag.
type Stat struct {
	Skill   string `json:"skill"`
	Seen    int    `json:"seen"`
	Correct int    `json:"correct"`
}

// Accuracy returns Correct/Seen, or 0 when the skill was never seen.
func (s Stat) Accuracy() float64 {
	if s.Seen == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Seen)
}

// Candidate is a weak skill together with the 1-based positions of the items
// it was missed on.
type Candidate struct {
	Stat
	Examples []int `json:"examples"`
}

// Aggregate tallies outcomes per skill tag, sorted by accuracy ascending.
// Outcomes for items outside items are ignored. Skills appear only if some
// outcome touched them; ties keep first-seen order.
func Aggregate(items []item.Item, outcomes []Outcome) []Stat {
	byID := indexItems(items)
	pos := make(map[string]int)
	var stats []Stat
	for _, o := range outcomes {
		i, ok := byID[o.ItemID]
		if !ok {
			continue
		}
		for _, tag := range items[i].Skills {
			j, seen := pos[tag]
			if !seen {
				j = len(stats)
				pos[tag] = j
				stats = append(stats, Stat{Skill: tag})
			}
			stats[j].Seen++
			if o.Correct {
				stats[j].Correct++
			}
		}
	}
	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Accuracy() < stats[b].Accuracy()
	})
	return stats
}

// RankWeakest returns up to n skills with the lowest accuracy. Each candidate
// lists the sorted, distinct positions (1-based, in items order) of items the
// skill was answered incorrectly on, capped at five.
func RankWeakest(items []item.Item, outcomes []Outcome, n int) []Candidate {
	stats := Aggregate(items, outcomes)
	if n < len(stats) {
		stats = stats[:n]
	}
	if len(stats) == 0 {
		return nil
	}

	byID := indexItems(items)
	wrong := make(map[string]map[int]struct{})
	for _, o := range outcomes {
		if o.Correct {
			continue
		}
		i, ok := byID[o.ItemID]
		if !ok {
			continue
		}
		for _, tag := range items[i].Skills {
			if wrong[tag] == nil {
				wrong[tag] = make(map[int]struct{})
			}
			wrong[tag][i+1] = struct{}{}
		}
	}

	out := make([]Candidate, len(stats))
	for k, s := range stats {
		examples := make([]int, 0, len(wrong[s.Skill]))
		for p := range wrong[s.Skill] {
			examples = append(examples, p)
		}
		sort.Ints(examples)
		if len(examples) > maxExamples {
			examples = examples[:maxExamples]
		}
		out[k] = Candidate{Stat: s, Examples: examples}
	}
	return out
}

func indexItems(items []item.Item) map[string]int {
	m := make(map[string]int, len(items))
	for i, it := range items {
		m[it.ID] = i
	}
	return m
}
