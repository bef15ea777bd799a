package item

// Part is the section an item belongs to.
type Part string

const (
	PartR5 Part = "R5" // incomplete sentences
	PartR7 Part = "R7" // reading comprehension
)

// AllParts returns the known parts in blueprint order.
func AllParts() []Part {
	return []Part{PartR5, PartR7}
}

// Valid reports whether p is a known part.
func (p Part) Valid() bool {
	return p == PartR5 || p == PartR7
}

// Item is one multiple-choice question. Items are loaded once and never
// mutated; sessions share them read-only.
type Item struct {
	ID           string   `json:"id" yaml:"id"`
	Part         Part     `json:"part" yaml:"part"`
	Stem         string   `json:"stem" yaml:"stem"`
	Options      []string `json:"options" yaml:"options"`
	Answer       int      `json:"answer" yaml:"answer"`
	Skills       []string `json:"skills" yaml:"skills"`
	Difficulty   float64  `json:"difficulty" yaml:"difficulty"`
	TimeLimitSec int      `json:"time_limit_sec" yaml:"time_limit_sec"`
	Explanation  string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Rationales   []string `json:"rationales,omitempty" yaml:"rationales,omitempty"`
}

// HasOption reports whether i is a valid option index for the item.
func (it Item) HasOption(i int) bool {
	return i >= 0 && i < len(it.Options)
}

// IsCorrect reports whether selected is the item's correct option.
func (it Item) IsCorrect(selected int) bool {
	return selected == it.Answer
}
