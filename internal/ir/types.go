package ir

// SchemaSpec is a compiled quantity schema: the declarations a props.Schema
// is built from.
type SchemaSpec struct {
	Name       string         `json:"name"`
	Quantities []QuantitySpec `json:"quantities"`
}

// QuantitySpec declares one physical property.
//
// An invertible quantity also gets a mapping slot (<name>Map) and a
// derivative slot (<name>Deriv). Reciprocal names another quantity in the
// same schema; the link is symmetric, so declaring it on one side is enough.
type QuantitySpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Invertible  bool     `json:"invertible"`
	Reciprocal  string   `json:"reciprocal,omitempty"`
	Default     *float64 `json:"default,omitempty"`
}

// Quantity returns the declaration named name.
func (s SchemaSpec) Quantity(name string) (QuantitySpec, bool) {
	for _, q := range s.Quantities {
		if q.Name == name {
			return q, true
		}
	}
	return QuantitySpec{}, false
}

// ReciprocalPairs returns each reciprocal link once, as [declaring, target],
// in declaration order.
func (s SchemaSpec) ReciprocalPairs() [][2]string {
	seen := make(map[[2]string]bool)
	var pairs [][2]string
	for _, q := range s.Quantities {
		if q.Reciprocal == "" {
			continue
		}
		key := [2]string{q.Name, q.Reciprocal}
		if q.Reciprocal < q.Name {
			key = [2]string{q.Reciprocal, q.Name}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, [2]string{q.Name, q.Reciprocal})
	}
	return pairs
}
