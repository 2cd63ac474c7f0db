// Package quantity provides the numeric values that physical properties
// resolve to.
//
// Value is sealed: a quantity is either a Scalar or an Array of float64.
// Models are always Arrays. FromAny is the single entry point for converting
// loosely typed input (CLI flags, YAML scenario values) and is what the
// property setters use for their numeric capability check.
package quantity
