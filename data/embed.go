// Package data embeds the default item pool shipped with the binary.
package data

import _ "embed"

// DefaultPool is the bundled pool (JSON, schema v1).
//
//go:embed items/pool.json
var DefaultPool []byte
