package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogGenerator_GenerateAdvice(t *testing.T) {
	g := NewCatalogGenerator(nil)
	got, err := g.GenerateAdvice(context.Background(), AdviceInput{ScaledReading: 300, CEFR: "B1", Weakest: weakest()})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Tense", got[0].Label)
	assert.Equal(t, []int{2, 5, 7}, got[0].Examples)
	assert.GreaterOrEqual(t, len(got[0].Practice), 2)
	assert.Equal(t, "General reading", got[2].Label)
}

func TestCatalogGenerator_Explain(t *testing.T) {
	g := NewCatalogGenerator(nil)

	it := testItem()
	got, err := g.Explain(context.Background(), ExplainInput{Item: it})
	require.NoError(t, err)
	assert.Equal(t, "The correct answer is (C) prepared.", got)

	it.Rationales = []string{"no", "no", "Passive: was + past participle.", "no"}
	got, err = g.Explain(context.Background(), ExplainInput{Item: it})
	require.NoError(t, err)
	assert.Equal(t, "Passive: was + past participle.", got)

	it.Answer = 9
	_, err = g.Explain(context.Background(), ExplainInput{Item: it})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnconfigured(t *testing.T) {
	g := Unconfigured{Reason: "no LLM provider configured"}

	_, err := g.GenerateAdvice(context.Background(), AdviceInput{Weakest: weakest()})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no LLM provider configured")

	_, err = g.Explain(context.Background(), ExplainInput{Item: testItem()})
	assert.ErrorIs(t, err, ErrUnavailable)
}
