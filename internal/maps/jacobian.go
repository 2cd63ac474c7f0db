package maps

import "fmt"

// Jacobian is a sealed interface for derivative values of a Transformation.
// Only Zero, Diagonal and Dense implement it.
type Jacobian interface {
	jacobian() // Sealed

	// Shape returns (rows, cols). Zero reports (0, 0): it conforms to any shape.
	Shape() (rows, cols int)
}

// Zero is the additive identity. It is returned for quantities that do not
// depend on the model at all.
type Zero struct{}

func (Zero) jacobian() {}

// Shape implements Jacobian.
func (Zero) Shape() (int, int) { return 0, 0 }

// String renders Zero.
func (Zero) String() string { return "Zero" }

// IsZero reports whether j is the Zero sentinel.
func IsZero(j Jacobian) bool {
	_, ok := j.(Zero)
	return ok
}

// Diagonal is a square Jacobian with only diagonal entries, produced by
// element-wise transformations.
type Diagonal []float64

func (Diagonal) jacobian() {}

// Shape implements Jacobian.
func (d Diagonal) Shape() (int, int) { return len(d), len(d) }

// Dense converts d to a Dense matrix.
func (d Diagonal) Dense() Dense {
	out := NewDense(len(d), len(d))
	for i, v := range d {
		out.Set(i, i, v)
	}
	return out
}

// Dense is a row-major matrix.
type Dense struct {
	Rows int
	Cols int
	Data []float64
}

func (Dense) jacobian() {}

// NewDense allocates a zero-filled rows x cols matrix.
func NewDense(rows, cols int) Dense {
	return Dense{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Shape implements Jacobian.
func (d Dense) Shape() (int, int) { return d.Rows, d.Cols }

// At returns the entry at (i, j).
func (d Dense) At(i, j int) float64 { return d.Data[i*d.Cols+j] }

// Set assigns the entry at (i, j).
func (d Dense) Set(i, j int, v float64) { d.Data[i*d.Cols+j] = v }

// MulJacobian returns the matrix product a·b, as used by the chain rule.
// Zero absorbs: a product involving Zero is Zero.
func MulJacobian(a, b Jacobian) (Jacobian, error) {
	if IsZero(a) || IsZero(b) {
		return Zero{}, nil
	}
	_, ac := a.Shape()
	br, _ := b.Shape()
	if ac != br {
		return nil, fmt.Errorf("jacobian shape mismatch: %dx%d · %dx%d", rowsOf(a), ac, br, colsOf(b))
	}

	switch av := a.(type) {
	case Diagonal:
		switch bv := b.(type) {
		case Diagonal:
			out := make(Diagonal, len(av))
			for i := range av {
				out[i] = av[i] * bv[i]
			}
			return out, nil
		case Dense:
			// Scale row i of b by av[i].
			out := NewDense(bv.Rows, bv.Cols)
			for i := 0; i < bv.Rows; i++ {
				for j := 0; j < bv.Cols; j++ {
					out.Set(i, j, av[i]*bv.At(i, j))
				}
			}
			return out, nil
		}
	case Dense:
		switch bv := b.(type) {
		case Diagonal:
			// Scale column j of a by bv[j].
			out := NewDense(av.Rows, av.Cols)
			for i := 0; i < av.Rows; i++ {
				for j := 0; j < av.Cols; j++ {
					out.Set(i, j, av.At(i, j)*bv[j])
				}
			}
			return out, nil
		case Dense:
			out := NewDense(av.Rows, bv.Cols)
			for i := 0; i < av.Rows; i++ {
				for k := 0; k < av.Cols; k++ {
					aik := av.At(i, k)
					if aik == 0 {
						continue
					}
					for j := 0; j < bv.Cols; j++ {
						out.Data[i*out.Cols+j] += aik * bv.At(k, j)
					}
				}
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unsupported jacobian product: %T · %T", a, b)
}

func rowsOf(j Jacobian) int {
	r, _ := j.Shape()
	return r
}

func colsOf(j Jacobian) int {
	_, c := j.Shape()
	return c
}
