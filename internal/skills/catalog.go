package skills

import "strings"

// Meta is the learner-facing description of a skill tag.
type Meta struct {
	Label    string   `json:"label"`
	Meaning  string   `json:"meaning"`
	Read     string   `json:"read"`
	Practice []string `json:"practice"`
}

// Catalog maps skill tags to their descriptions.
type Catalog struct {
	entries  map[string]Meta
	fallback Meta
}

// NewCatalog builds a catalog from entries. fallback is returned for tags
// that match nothing.
func NewCatalog(entries map[string]Meta, fallback Meta) *Catalog {
	m := make(map[string]Meta, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Catalog{entries: m, fallback: fallback}
}

// DefaultCatalog returns the built-in catalog covering the grammar,
// vocabulary and inference tags used by the bundled pool.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultEntries, defaultFallback)
}

// Lookup resolves tag by exact match, then by its first two colon-separated
// segments (so "grammar:tense:past" finds "grammar:tense"), then falls back.
func (c *Catalog) Lookup(tag string) Meta {
	if m, ok := c.entries[tag]; ok {
		return m
	}
	if parts := strings.SplitN(tag, ":", 3); len(parts) >= 2 {
		if m, ok := c.entries[parts[0]+":"+parts[1]]; ok {
			return m
		}
	}
	return c.fallback
}

// Known reports whether tag has an exact catalog entry.
func (c *Catalog) Known(tag string) bool {
	_, ok := c.entries[tag]
	return ok
}

var defaultFallback = Meta{
	Label:   "General reading",
	Meaning: "Grasping sentence structure and what each word is doing",
	Read:    "Find the subject, verb and object first, then attach the modifiers",
	Practice: []string{
		"Break one sentence a day into S/V/O/M",
		"Follow the argument through its linking words",
	},
}

var defaultEntries = map[string]Meta{
	"grammar:preposition": {
		Label:   "Prepositions",
		Meaning: "Choosing the preposition that fits time, place or purpose",
		Read:    "Look at the noun phrase right after the blank: on for dates and days, in for periods, at for clock times and points",
		Practice: []string{
			"Collect ten preposition + noun examples",
			"Sketch the core image of on, in and at",
			"Highlight the word that decides the preposition in past questions",
		},
	},
	"grammar:tense": {
		Label:   "Tense",
		Meaning: "Matching the verb form to the sentence's timeline",
		Read:    "Pick out time markers (yesterday, by Friday, was) and keep main and subordinate clauses consistent",
		Practice: []string{
			"Draw the sequence of events on a line",
			"Colour main and subordinate clauses differently",
			"Read example sentences for each tense aloud",
		},
	},
	"grammar:voice": {
		Label:   "Passive voice",
		Meaning: "Deciding when be + past participle is needed",
		Read:    "Check who does what to whom from the subject and verb, then compare active and passive",
		Practice: []string{
			"Rewrite ten active sentences as passive",
			"Notice the passive forms in product manuals",
		},
	},
	"grammar:countability": {
		Label:   "Countable and uncountable nouns",
		Meaning: "Telling whether a noun can be counted",
		Read:    "See whether numbers or a, an, many can attach; memorize uncountables like information and feedback",
		Practice: []string{
			"Memorize a list of common uncountable nouns",
			"Alternate countable and uncountable paraphrases",
		},
	},
	"grammar:part-of-speech": {
		Label:   "Parts of speech",
		Meaning: "Deciding the word class of the blank from sentence structure",
		Read:    "After an article comes an adjective or noun; right after a verb often an adverb. Judge by position and role",
		Practice: []string{
			"Do short word-form substitution drills",
			"Underline the S/V/O skeleton of each sentence",
		},
	},
	"grammar:verb-agreement": {
		Label:   "Subject-verb agreement",
		Meaning: "Matching the verb to the number of its subject",
		Read:    "Identify the subject, decide singular or plural, then inflect the verb",
		Practice: []string{
			"Circle the subject and box its verb",
			"Review each/every and compound subjects",
		},
	},
	"vocab:word-choice": {
		Label:   "Word choice",
		Meaning: "Picking the word that fits the context among near-synonyms",
		Read:    "Use the words right before and after the blank and check dictionary examples",
		Practice: []string{
			"Keep a notebook of near-synonym pairs with examples",
			"Write one sentence for each new word",
		},
	},
	"vocab:paraphrase": {
		Label:   "Paraphrase",
		Meaning: "Recognizing the same idea expressed in different words",
		Read:    "Expect the options to restate the passage; match meaning, not surface words",
		Practice: []string{
			"Rewrite short passages in your own words",
			"List paraphrase pairs from answer keys",
		},
	},
	"vocab:collocation": {
		Label:   "Collocations",
		Meaning: "Knowing which words naturally go together",
		Read:    "Check the verb + noun or adjective + noun pairing around the blank",
		Practice: []string{
			"Learn collocations in chunks, not single words",
			"Group make/do/take/have expressions",
		},
	},
	"inference:detail": {
		Label:   "Locating details",
		Meaning: "Finding the specific fact a question asks about",
		Read:    "Read the question first, then scan for its key words in the passage",
		Practice: []string{
			"Time yourself scanning for names, dates and numbers",
			"Mark the sentence that proves each answer",
		},
	},
	"inference:main-purpose": {
		Label:   "Main purpose",
		Meaning: "Identifying why a text was written",
		Read:    "Focus on the opening and closing lines and the title or subject line",
		Practice: []string{
			"Summarize each email or notice in one line",
			"Compare the first and last sentences of passages",
		},
	},
	"inference:time": {
		Label:   "Time references",
		Meaning: "Tracking dates, schedules and changes to them",
		Read:    "Note every date and time, and watch for words like moved, postponed, until",
		Practice: []string{
			"Turn schedules into a timeline",
			"Practice questions on rescheduled events",
		},
	},
	"inference:condition": {
		Label:   "Conditions",
		Meaning: "Understanding what must be true for something to apply",
		Read:    "Look for if, unless, provided that, and only when",
		Practice: []string{
			"Rewrite unless sentences with if not",
			"Collect conditional clauses from notices",
		},
	},
	"inference:goal": {
		Label:   "Goals and reasons",
		Meaning: "Inferring the aim behind an action",
		Read:    "Watch for to, in order to, so that and aim",
		Practice: []string{
			"Ask why after each paragraph you read",
			"Match actions to stated goals in articles",
		},
	},
	"inference:sentiment": {
		Label:   "Attitude and opinion",
		Meaning: "Reading the writer's attitude toward a subject",
		Read:    "Contrast words like but and however usually carry the real opinion",
		Practice: []string{
			"Sort review sentences into positive and negative",
			"Highlight evaluative adjectives",
		},
	},
}
