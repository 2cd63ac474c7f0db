// Package maps provides Transformations from an inversion model to physical
// quantity values, together with their Jacobians.
//
// The property graph in package props treats a Transformation as opaque: it
// only calls Apply and Deriv, composes with Compose and wraps with
// ReciprocalOf. The element-wise maps here (Identity, Exp, Log, Reciprocal,
// Scale) are the reference set used by the CLI and the scenario harness.
//
// Composition follows the usual operator notation:
//
//	t := maps.Compose(maps.Reciprocal(), maps.Exp()) // "reciprocal * exp"
//	v, _ := t.Apply(quantity.NewArray(0, 1))          // [1, 1/e]
//	j, _ := t.Deriv(quantity.NewArray(0, 1))          // Diagonal
//
// Jacobians are sealed: Zero (additive identity), Diagonal and Dense.
// MulJacobian implements the chain-rule products Compose needs.
package maps
