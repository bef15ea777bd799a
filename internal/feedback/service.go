package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chaspy/toeic-assessment-poc/internal/llm"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

// Purpose labels recorded with each LLM request.
const (
	PurposeAdvice      = "advice"
	PurposeExplanation = "explanation"
)

// Service generates advice and explanations with an LLM provider. Retries,
// timeouts and rate limiting belong to the provider chain.
type Service struct {
	provider llm.Provider
	catalog  *skills.Catalog
	cfg      Config
}

var (
	_ Generator = (*Service)(nil)
	_ Explainer = (*Service)(nil)
)

// NewService creates an LLM-backed feedback service.
func NewService(provider llm.Provider, catalog *skills.Catalog, cfg Config) *Service {
	if catalog == nil {
		catalog = skills.DefaultCatalog()
	}
	return &Service{provider: provider, catalog: catalog, cfg: cfg}
}

type adviceOutput struct {
	Advice []adviceEntry `json:"advice"`
}

type adviceEntry struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Meaning  string   `json:"meaning"`
	Read     string   `json:"read"`
	Practice []string `json:"practice"`
}

// GenerateAdvice asks the provider for advice on each weak skill. Entries
// come back in candidate order with the positions computed locally. Every
// requested skill must be answered with non-empty text; anything less is
// ErrUnavailable. With no candidates it returns an empty list without
// calling the provider.
func (s *Service) GenerateAdvice(ctx context.Context, in AdviceInput) ([]Advice, error) {
	weakest := in.Weakest
	if len(weakest) == 0 {
		return []Advice{}, nil
	}
	ctx = llm.WithSession(llm.WithPurpose(ctx, PurposeAdvice), in.SessionID)

	req := llm.Request{
		System: adviceSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAdviceUserMessage(s.catalog, in)},
		},
		Schema:      AdviceSchema,
		MaxTokens:   s.cfg.AdviceMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: advice: %w", ErrUnavailable, err)
	}

	var out adviceOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: parse advice response: %w", ErrUnavailable, err)
	}

	byKey := make(map[string]adviceEntry, len(out.Advice))
	for _, e := range out.Advice {
		if _, dup := byKey[e.Key]; !dup {
			byKey[e.Key] = e
		}
	}

	advice := make([]Advice, 0, len(weakest))
	for _, c := range weakest {
		e, ok := byKey[c.Skill]
		if !ok {
			return nil, fmt.Errorf("%w: advice response has no entry for %q", ErrUnavailable, c.Skill)
		}
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("%w: advice for %q: %w", ErrUnavailable, c.Skill, err)
		}
		advice = append(advice, Advice{
			Key:      c.Skill,
			Label:    strings.TrimSpace(e.Label),
			Meaning:  strings.TrimSpace(e.Meaning),
			Read:     strings.TrimSpace(e.Read),
			Practice: e.Practice,
			Examples: examplesOf(c),
		})
	}
	return advice, nil
}

// validate rejects entries with blank text; the schema alone allows them.
func (e adviceEntry) validate() error {
	for name, v := range map[string]string{"label": e.Label, "meaning": e.Meaning, "read": e.Read} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("empty %s", name)
		}
	}
	if len(e.Practice) == 0 {
		return fmt.Errorf("no practice actions")
	}
	for _, p := range e.Practice {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty practice action")
		}
	}
	return nil
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
}

// Explain asks the provider for a short explanation of one item.
func (s *Service) Explain(ctx context.Context, in ExplainInput) (string, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, PurposeExplanation), in.SessionID)

	req := llm.Request{
		System: explainSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExplainUserMessage(in)},
		},
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.ExplainMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: explanation: %w", ErrUnavailable, err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("%w: parse explanation response: %w", ErrUnavailable, err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", fmt.Errorf("%w: empty explanation", ErrUnavailable)
	}
	return text, nil
}
