// Package ir provides the canonical intermediate representation of quantity
// schemas.
//
// The compiler produces ir.SchemaSpec from CUE sources and props builds live
// descriptor graphs from it. ir imports nothing internal.
//
// Key design constraints:
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
//   - Canonical JSON carries no floats; numbers are hashed as FormatNumber strings
//   - All JSON tags use snake_case
package ir
