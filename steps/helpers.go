// Package steps provides the domain-specific workflow step families
// (e-commerce, financial, healthcare, ML) that plug into a workflow.Engine.
// These are pure, opaque transforms from workflow.Context to workflow.Context
// — they are collaborators the scheduler dispatches to, not part of its core
// scheduling logic.
package steps

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// requestString reads a string field from a context's Request map, falling
// back to def if the key is absent or not a string.
func requestString(request map[string]any, key, def string) string {
	if request == nil {
		return def
	}
	if v, ok := request[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// requestFloat reads a numeric field, accepting both float64 (the typical
// decoded-JSON representation) and int.
func requestFloat(request map[string]any, key string, def float64) float64 {
	if request == nil {
		return def
	}
	switch v := request[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// requestInt mirrors requestFloat for integer fields.
func requestInt(request map[string]any, key string, def int) int {
	if request == nil {
		return def
	}
	switch v := request[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// requestSliceLen reports the length of a []any field, or 0 if absent.
func requestSliceLen(request map[string]any, key string) int {
	if request == nil {
		return 0
	}
	if v, ok := request[key].([]any); ok {
		return len(v)
	}
	return 0
}

// dataString reads a string field previously written to Data by an earlier
// step, falling back to def.
func dataString(data map[string]any, key, def string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// dataFloat mirrors dataString for numeric fields written by earlier steps.
func dataFloat(data map[string]any, key string, def float64) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// deterministicID hashes seed with SHA-256 and returns an 8-character hex
// prefix, the Go equivalent of the prototype's use of Python's built-in
// hash() to derive pseudo-identifiers (tracking numbers, transaction ids)
// from request fields. Unlike hash(), this is stable across process
// restarts, which the prototype's behavior never actually required but
// never precluded either.
func deterministicID(prefix, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return prefix + hex.EncodeToString(sum[:])[:8]
}

// randomID returns a prefixed random identifier, the Go equivalent of the
// prototype's generate_secure_id helper built on uuid.uuid4().
func randomID(prefix string) string {
	return fmt.Sprintf("%s%s", prefix, uuid.NewString()[:8])
}
