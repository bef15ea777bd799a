package item

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/chaspy/toeic-assessment-poc/internal/schema"
)

// DefaultSchemaVersion is assumed for pools given as a bare item list.
const DefaultSchemaVersion = "v1.0.0"

// supportedMajor is the only pool schema major version this build reads.
const supportedMajor = "v1"

// ErrInvalidPool is returned when a pool document fails validation.
var ErrInvalidPool = errors.New("invalid item pool")

// Pool is a validated, read-only item collection.
type Pool struct {
	SchemaVersion string
	items         []Item
	byID          map[string]int
}

// Items returns the pool's items in file order. The slice is shared; callers
// must not modify it.
func (p *Pool) Items() []Item {
	return p.items
}

// Len returns the number of items.
func (p *Pool) Len() int {
	return len(p.items)
}

// Get returns the item with the given id.
func (p *Pool) Get(id string) (Item, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Item{}, false
	}
	return p.items[i], true
}

// CountByPart returns the number of items per part.
func (p *Pool) CountByPart() map[Part]int {
	out := make(map[Part]int)
	for _, it := range p.items {
		out[it.Part]++
	}
	return out
}

// LoadFile reads and validates a pool file. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON.
func LoadFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseYAML validates a YAML pool document.
func ParseYAML(data []byte) (*Pool, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse YAML: %v", ErrInvalidPool, err)
	}
	// Round-trip through JSON so schema validation and decoding see the same
	// value types as a JSON pool.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: convert YAML: %v", ErrInvalidPool, err)
	}
	return ParseJSON(raw)
}

// ParseJSON validates a JSON pool document. The document is either a bare
// array of items or an object with schema_version and items.
func ParseJSON(data []byte) (*Pool, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse JSON: %v", ErrInvalidPool, err)
	}
	if arr, ok := doc.([]any); ok {
		doc = map[string]any{
			"schema_version": DefaultSchemaVersion,
			"items":          arr,
		}
	}

	if err := schema.Validate("item-pool", poolSchema, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}
	var file struct {
		SchemaVersion string `json:"schema_version"`
		Items         []Item `json:"items"`
	}
	if err := json.Unmarshal(normalized, &file); err != nil {
		return nil, fmt.Errorf("%w: decode items: %v", ErrInvalidPool, err)
	}

	if !semver.IsValid(file.SchemaVersion) {
		return nil, fmt.Errorf("%w: schema_version %q is not a semantic version", ErrInvalidPool, file.SchemaVersion)
	}
	if major := semver.Major(file.SchemaVersion); major != supportedMajor {
		return nil, fmt.Errorf("%w: schema_version %s unsupported (want %s.x)", ErrInvalidPool, file.SchemaVersion, supportedMajor)
	}

	return NewPool(file.SchemaVersion, file.Items)
}

// NewPool builds a pool from already-decoded items, applying the checks the
// schema cannot express.
func NewPool(schemaVersion string, items []Item) (*Pool, error) {
	var errs []string
	byID := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := byID[it.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate item id %q", it.ID))
			continue
		}
		byID[it.ID] = i
		if !it.Part.Valid() {
			errs = append(errs, fmt.Sprintf("item %q: unknown part %q", it.ID, it.Part))
		}
		if len(it.Options) < 2 {
			errs = append(errs, fmt.Sprintf("item %q: needs at least 2 options", it.ID))
		}
		if !it.HasOption(it.Answer) {
			errs = append(errs, fmt.Sprintf("item %q: answer %d out of range for %d options", it.ID, it.Answer, len(it.Options)))
		}
		if len(it.Rationales) > 0 && len(it.Rationales) != len(it.Options) {
			errs = append(errs, fmt.Sprintf("item %q: %d rationales for %d options", it.ID, len(it.Rationales), len(it.Options)))
		}
		if it.Difficulty < 0 || it.Difficulty > 1 {
			errs = append(errs, fmt.Sprintf("item %q: difficulty %v outside [0,1]", it.ID, it.Difficulty))
		}
		if it.TimeLimitSec <= 0 {
			errs = append(errs, fmt.Sprintf("item %q: time_limit_sec must be positive", it.ID))
		}
		seen := make(map[string]bool, len(it.Skills))
		for _, tag := range it.Skills {
			if seen[tag] {
				errs = append(errs, fmt.Sprintf("item %q: duplicate skill tag %q", it.ID, tag))
			}
			seen[tag] = true
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrInvalidPool, strings.Join(errs, "\n  "))
	}
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
	}
	return &Pool{SchemaVersion: schemaVersion, items: items, byID: byID}, nil
}
