package feedback

import (
	"context"
	"fmt"

	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

// CatalogGenerator produces advice and explanations without a model, from
// the skill catalog and the item's own rationales. It never fails.
type CatalogGenerator struct {
	catalog *skills.Catalog
}

var (
	_ Generator = (*CatalogGenerator)(nil)
	_ Explainer = (*CatalogGenerator)(nil)
)

// NewCatalogGenerator returns an offline generator over catalog.
func NewCatalogGenerator(catalog *skills.Catalog) *CatalogGenerator {
	if catalog == nil {
		catalog = skills.DefaultCatalog()
	}
	return &CatalogGenerator{catalog: catalog}
}

func (g *CatalogGenerator) GenerateAdvice(_ context.Context, in AdviceInput) ([]Advice, error) {
	out := make([]Advice, 0, len(in.Weakest))
	for _, c := range in.Weakest {
		out = append(out, fromCatalog(g.catalog, c))
	}
	return out, nil
}

// Explain returns the correct option's rationale when the item has one,
// otherwise names the correct option.
func (g *CatalogGenerator) Explain(_ context.Context, in ExplainInput) (string, error) {
	it := in.Item
	if it.HasOption(it.Answer) && len(it.Rationales) == len(it.Options) && it.Rationales[it.Answer] != "" {
		return it.Rationales[it.Answer], nil
	}
	if !it.HasOption(it.Answer) {
		return "", fmt.Errorf("%w: item %s has no valid answer", ErrUnavailable, it.ID)
	}
	return fmt.Sprintf("The correct answer is (%c) %s.", 'A'+it.Answer, it.Options[it.Answer]), nil
}

// Unconfigured stands in when the LLM generator is selected but no provider
// is set up. Every call fails with ErrUnavailable.
type Unconfigured struct {
	Reason string
}

var (
	_ Generator = Unconfigured{}
	_ Explainer = Unconfigured{}
)

func (u Unconfigured) GenerateAdvice(context.Context, AdviceInput) ([]Advice, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

func (u Unconfigured) Explain(context.Context, ExplainInput) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}
