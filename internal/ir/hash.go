package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSchema = "physprop/schema/v1"
	DomainTrace  = "physprop/trace/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SchemaObject converts spec into the canonical object that SchemaHash
// digests. Quantity order is significant: it is the declaration order that
// instances and CLI output follow.
func SchemaObject(spec SchemaSpec) map[string]any {
	quantities := make([]any, 0, len(spec.Quantities))
	for _, q := range spec.Quantities {
		obj := map[string]any{
			"name":        q.Name,
			"description": q.Description,
			"invertible":  q.Invertible,
		}
		if q.Reciprocal != "" {
			obj["reciprocal"] = q.Reciprocal
		}
		if q.Default != nil {
			obj["default"] = FormatNumber(*q.Default)
		}
		quantities = append(quantities, obj)
	}
	return map[string]any{
		"ir_version": IRVersion,
		"name":       spec.Name,
		"quantities": quantities,
	}
}

// SchemaHash computes the content-addressed identity of a schema.
// Two specs hash equal iff they declare the same quantities in the same order.
func SchemaHash(spec SchemaSpec) (string, error) {
	canonical, err := MarshalCanonical(SchemaObject(spec))
	if err != nil {
		return "", fmt.Errorf("SchemaHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSchema, canonical), nil
}

// TraceHash digests a scenario trace: the ordered list of canonical step
// records produced by the harness.
func TraceHash(steps []any) (string, error) {
	canonical, err := MarshalCanonical(steps)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustSchemaHash is like SchemaHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSchemaHash(spec SchemaSpec) string {
	h, err := SchemaHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}
