// Package schema compiles and caches JSON Schemas declared as Go literals.
// Item pools and LLM responses are both checked through it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// cache holds compiled schemas by name. A name must always map to the same
// definition.
var cache sync.Map // map[string]*jsonschema.Schema

// Compile returns the compiled form of definition, compiling it on first
// use of name.
func Compile(name string, definition any) (*jsonschema.Schema, error) {
	if cached, ok := cache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain JSON values, not Go literals with []string
	// and friends, so round-trip the definition.
	raw, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	actual, _ := cache.LoadOrStore(name, compiled)
	return actual.(*jsonschema.Schema), nil
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into
// any) against the named schema.
func Validate(name string, definition, value any) error {
	compiled, err := Compile(name, definition)
	if err != nil {
		return err
	}
	return compiled.Validate(value)
}
