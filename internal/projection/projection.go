// Package projection maps states into low-dimensional Euclidean coordinates
// for cell-decomposition planners. An evaluator reports the projected
// dimension and per-dimension cell sizes used to discretize the projected
// space into a grid.
package projection

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/kinoplan/internal/state"
)

var (
	// ErrShape indicates an inconsistent matrix, component list, or cell
	// size vector.
	ErrShape = errors.New("projection: inconsistent projection shape")

	// ErrStateType indicates a state the evaluator cannot project.
	ErrStateType = errors.New("projection: state value has wrong type")
)

// Evaluator computes a projection of a state into R^k.
type Evaluator interface {
	Dimension() int
	CellSizes() []float64
	Project(s state.State) ([]float64, error)
}

// CellCoordinates discretizes a projection into integer grid coordinates
// using the per-dimension cell sizes.
func CellCoordinates(proj, cellSizes []float64) []int {
	coords := make([]int, len(proj))
	for i, v := range proj {
		coords[i] = int(math.Floor(v / cellSizes[i]))
	}
	return coords
}

// Linear projects a real-vector state through an arbitrary k-by-n matrix.
type Linear struct {
	matrix [][]float64
	cells  []float64
}

func NewLinear(matrix [][]float64, cellSizes []float64) (*Linear, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrShape)
	}
	cols := len(matrix[0])
	for i, row := range matrix {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
	}
	if len(cellSizes) != len(matrix) {
		return nil, fmt.Errorf("%w: %d cell sizes for %d rows", ErrShape, len(cellSizes), len(matrix))
	}
	return &Linear{matrix: matrix, cells: cellSizes}, nil
}

// NewRandomLinear builds a linear evaluator whose rows are random unit
// vectors made mutually orthogonal by Gram-Schmidt, projecting an
// n-dimensional state to k dimensions.
func NewRandomLinear(rng *rand.Rand, n, k int, cellSizes []float64) (*Linear, error) {
	if k > n || k == 0 {
		return nil, fmt.Errorf("%w: cannot project %d dims to %d", ErrShape, n, k)
	}
	matrix := make([][]float64, k)
	for i := range matrix {
		row := make([]float64, n)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		for p := 0; p < i; p++ {
			dot := 0.0
			for j := range row {
				dot += row[j] * matrix[p][j]
			}
			for j := range row {
				row[j] -= dot * matrix[p][j]
			}
		}
		norm := 0.0
		for _, v := range row {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for j := range row {
			row[j] /= norm
		}
		matrix[i] = row
	}
	return NewLinear(matrix, cellSizes)
}

func (l *Linear) Dimension() int       { return len(l.matrix) }
func (l *Linear) CellSizes() []float64 { return l.cells }

func (l *Linear) Project(s state.State) ([]float64, error) {
	v, ok := s.(*state.Vector)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrStateType, s)
	}
	if len(v.Values) != len(l.matrix[0]) {
		return nil, fmt.Errorf("%w: state has %d values, matrix has %d columns",
			ErrShape, len(v.Values), len(l.matrix[0]))
	}
	out := make([]float64, len(l.matrix))
	for i, row := range l.matrix {
		sum := 0.0
		for j, m := range row {
			sum += m * v.Values[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Orthogonal projects by selecting a subset of state components.
type Orthogonal struct {
	components []int
	cells      []float64
}

func NewOrthogonal(components []int, cellSizes []float64) (*Orthogonal, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: no components selected", ErrShape)
	}
	if len(cellSizes) != len(components) {
		return nil, fmt.Errorf("%w: %d cell sizes for %d components", ErrShape, len(cellSizes), len(components))
	}
	return &Orthogonal{components: components, cells: cellSizes}, nil
}

func (o *Orthogonal) Dimension() int       { return len(o.components) }
func (o *Orthogonal) CellSizes() []float64 { return o.cells }

func (o *Orthogonal) Project(s state.State) ([]float64, error) {
	v, ok := s.(*state.Vector)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrStateType, s)
	}
	out := make([]float64, len(o.components))
	for i, c := range o.components {
		if c < 0 || c >= len(v.Values) {
			return nil, fmt.Errorf("%w: component %d of a %d-dimensional state", ErrShape, c, len(v.Values))
		}
		out[i] = v.Values[c]
	}
	return out, nil
}

// Identity projects a real-vector state to itself.
type Identity struct {
	dim   int
	cells []float64
}

func NewIdentity(dim int, cellSizes []float64) (*Identity, error) {
	if len(cellSizes) != dim {
		return nil, fmt.Errorf("%w: %d cell sizes for dimension %d", ErrShape, len(cellSizes), dim)
	}
	return &Identity{dim: dim, cells: cellSizes}, nil
}

func (e *Identity) Dimension() int       { return e.dim }
func (e *Identity) CellSizes() []float64 { return e.cells }

func (e *Identity) Project(s state.State) ([]float64, error) {
	v, ok := s.(*state.Vector)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrStateType, s)
	}
	if len(v.Values) != e.dim {
		return nil, fmt.Errorf("%w: state has %d values, want %d", ErrShape, len(v.Values), e.dim)
	}
	out := make([]float64, e.dim)
	copy(out, v.Values)
	return out, nil
}
