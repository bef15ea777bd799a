package item

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaspy/toeic-assessment-poc/data"
)

const validArray = `[
  {"id": "a", "part": "R5", "stem": "s", "options": ["x", "y"], "answer": 1,
   "skills": ["grammar:tense"], "difficulty": 0.5, "time_limit_sec": 30},
  {"id": "b", "part": "R7", "stem": "t", "options": ["x", "y", "z"], "answer": 0,
   "skills": ["inference:detail"], "difficulty": 0.2, "time_limit_sec": 60,
   "explanation": "because", "rationales": ["r1", "r2", "r3"]}
]`

func TestParseJSON_BareArray(t *testing.T) {
	p, err := ParseJSON([]byte(validArray))
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemaVersion, p.SchemaVersion)
	assert.Equal(t, 2, p.Len())

	it, ok := p.Get("b")
	require.True(t, ok)
	assert.Equal(t, PartR7, it.Part)
	assert.Equal(t, "because", it.Explanation)
	assert.Len(t, it.Rationales, 3)

	_, ok = p.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, map[Part]int{PartR5: 1, PartR7: 1}, p.CountByPart())
}

func TestParseJSON_ObjectForm(t *testing.T) {
	doc := `{"schema_version": "v1.2.0", "items": ` + validArray + `}`
	p, err := ParseJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", p.SchemaVersion)
	assert.Equal(t, "a", p.Items()[0].ID)
}

func TestParseYAML(t *testing.T) {
	doc := `
schema_version: v1.0.0
items:
  - id: y1
    part: R5
    stem: "The meeting starts ___ 9 a.m."
    options: ["at", "on", "in"]
    answer: 0
    skills: [grammar:preposition]
    difficulty: 0.3
    time_limit_sec: 30
`
	p, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	it := p.Items()[0]
	assert.Equal(t, []string{"at", "on", "in"}, it.Options)
	assert.Equal(t, 30, it.TimeLimitSec)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"empty items", `[]`},
		{"unsupported major", `{"schema_version": "v2.0.0", "items": ` + validArray + `}`},
		{"not semver", `{"schema_version": "latest", "items": ` + validArray + `}`},
		{"one option", `[{"id":"a","part":"R5","stem":"s","options":["x"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":30}]`},
		{"difficulty above one", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":1.5,"time_limit_sec":30}]`},
		{"answer out of range", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":2,"skills":[],"difficulty":0.1,"time_limit_sec":30}]`},
		{"unknown part", `[{"id":"a","part":"R6","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":30}]`},
		{"zero time limit", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":0}]`},
		{"unknown field", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":30,"extra":true}]`},
		{"duplicate ids", `[
			{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":30},
			{"id":"a","part":"R7","stem":"t","options":["x","y"],"answer":1,"skills":[],"difficulty":0.1,"time_limit_sec":30}]`},
		{"duplicate skill tags", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":["grammar:tense","grammar:tense"],"difficulty":0.1,"time_limit_sec":30}]`},
		{"rationales mismatch", `[{"id":"a","part":"R5","stem":"s","options":["x","y"],"answer":0,"skills":[],"difficulty":0.1,"time_limit_sec":30,"rationales":["only one"]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPool)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "pool.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(validArray), 0o644))
	p, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	yamlPath := filepath.Join(dir, "pool.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- id: a\n  part: R7\n  stem: s\n  options: [x, y]\n  answer: 1\n  skills: []\n  difficulty: 0\n  time_limit_sec: 45\n"), 0o644))
	p, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, PartR7, p.Items()[0].Part)

	_, err = LoadFile(filepath.Join(dir, "nope.json"))
	require.Error(t, err)
}

func TestDefaultPoolFillsBlueprint(t *testing.T) {
	p, err := ParseJSON(data.DefaultPool)
	require.NoError(t, err)

	items, err := DefaultBlueprint().Select(p.Items())
	require.NoError(t, err)
	assert.Len(t, items, 20)
}

func TestNewPool_RejectsDuplicateSkillTags(t *testing.T) {
	it := Item{
		ID:           "r5-dup",
		Part:         PartR5,
		Stem:         "The meeting starts ___ 9 a.m.",
		Options:      []string{"at", "on"},
		Answer:       0,
		Skills:       []string{"grammar:preposition", "grammar:preposition"},
		Difficulty:   0.2,
		TimeLimitSec: 30,
	}
	_, err := NewPool(DefaultSchemaVersion, []Item{it})
	require.ErrorIs(t, err, ErrInvalidPool)
	assert.Contains(t, err.Error(), `duplicate skill tag "grammar:preposition"`)

	it.Skills = []string{"grammar:preposition", "vocab:time"}
	p, err := NewPool(DefaultSchemaVersion, []Item{it})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
}
