package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/physprop/internal/ir"
)

// CompileError is a problem in a schema declaration. Field is a dotted path
// such as "quantity.sigma.description", or "cue" for errors reported by CUE
// itself.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if !e.Pos.IsValid() {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
}

// CompileSchema reads a schema declaration from the root of a CUE package:
//
//	schema: "dc"
//	quantity: {
//		sigma: { description: "Electrical conductivity (S/m)", invertible: true, reciprocal: "rho" }
//		rho:   { description: "Electrical resistivity (Ohm m)", invertible: true, reciprocal: "sigma" }
//	}
//
// Quantities keep their declaration order. Structural checks beyond the
// required fields are left to Validate.
func CompileSchema(v cue.Value) (*ir.SchemaSpec, error) {
	if err := v.Err(); err != nil {
		return nil, fromCUE(err)
	}

	nameVal, ok := lookup(v, "schema")
	if !ok {
		return nil, &CompileError{Field: "schema", Message: "schema name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, fromCUE(err)
	}

	quantities, ok := lookup(v, "quantity")
	if !ok {
		return nil, &CompileError{Field: "quantity", Message: "at least one quantity is required", Pos: v.Pos()}
	}
	iter, err := quantities.Fields()
	if err != nil {
		return nil, fromCUE(err)
	}

	spec := &ir.SchemaSpec{Name: name}
	for iter.Next() {
		q, err := compileQuantity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Quantities = append(spec.Quantities, q)
	}
	return spec, nil
}

func compileQuantity(name string, v cue.Value) (ir.QuantitySpec, error) {
	q := ir.QuantitySpec{Name: name}

	desc, ok := lookup(v, "description")
	if !ok {
		return q, &CompileError{Field: "quantity." + name + ".description", Message: "description is required", Pos: v.Pos()}
	}
	var err error
	if q.Description, err = desc.String(); err != nil {
		return q, fromCUE(err)
	}

	if err := optional(v, "invertible", cue.Value.Bool, &q.Invertible); err != nil {
		return q, err
	}
	if err := optional(v, "reciprocal", cue.Value.String, &q.Reciprocal); err != nil {
		return q, err
	}

	if def, ok := lookup(v, "default"); ok {
		f, err := number(def)
		if err != nil {
			return q, err
		}
		q.Default = &f
	}
	return q, nil
}

func lookup(v cue.Value, field string) (cue.Value, bool) {
	fv := v.LookupPath(cue.ParsePath(field))
	return fv, fv.Exists()
}

// optional decodes field into dst when it is declared.
func optional[T any](v cue.Value, field string, decode func(cue.Value) (T, error), dst *T) error {
	fv, ok := lookup(v, field)
	if !ok {
		return nil
	}
	val, err := decode(fv)
	if err != nil {
		return fromCUE(err)
	}
	*dst = val
	return nil
}

// number accepts int and float literals.
func number(v cue.Value) (float64, error) {
	kind := v.IncompleteKind()
	if kind&cue.NumberKind == 0 || kind&^cue.NumberKind != 0 {
		return 0, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("default must be a number, got %v", kind),
			Pos:     v.Pos(),
		}
	}
	f, err := v.Float64()
	if err != nil {
		return 0, fromCUE(err)
	}
	return f, nil
}

// fromCUE turns the first positioned CUE error into a CompileError. Errors
// without a position are returned unchanged.
func fromCUE(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: pos[0]}
	}
	return err
}
