// Package props resolves physical properties of a simulation from explicit
// values, reciprocal relationships and model mappings.
//
// A Schema is a graph of three descriptor kinds, declared once through a
// Builder:
//
//   - PhysicalProperty: a quantity such as conductivity. Reads resolve from
//     the explicit value, the reciprocal's explicit value (1/x), the
//     reciprocal's derived value, or the mapping applied to the model.
//   - Mapping: the maps.Transformation from the model to one property. An
//     unset mapping resolves to the reciprocal of its reciprocal's mapping,
//     composed rather than evaluated.
//   - Derivative: the read-only Jacobian of a property with respect to the
//     model, or maps.Zero when the property does not depend on it.
//
// Descriptors are stateless. Values live in the store.Store of an Instance,
// and every write stores first and then invalidates the slots that derive
// from it, following the adjacency list reported by Schema.Dependents.
//
// Resolution never caches: every read is a pure function of the instance's
// slots and model at the time of the call.
package props
