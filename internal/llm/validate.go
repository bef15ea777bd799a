package llm

import (
	"encoding/json"
	"fmt"

	"github.com/chaspy/toeic-assessment-poc/internal/schema"
)

// validateResponse checks raw against s. A nil schema accepts anything.
// Failures are *ErrInvalidResponse carrying the raw content, so a retry
// decorator can decide to ask again.
func validateResponse(s *Schema, raw json.RawMessage) error {
	if s == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Validate("llm/"+s.Name, s.Definition, parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("response does not match %s: %w", s.Name, err)}
	}
	return nil
}
