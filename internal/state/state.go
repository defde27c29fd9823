// Package state defines the state-manifold side of the planning core: the
// opaque state values that propagation reads and writes, and the narrow
// manifold interface the control layer consumes. State manifolds are long
// lived and may be shared by several control manifolds.
package state

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBounds indicates inconsistent or inverted manifold bounds.
	ErrBounds = errors.New("state: invalid bounds")

	// ErrStateType indicates a state value of the wrong concrete kind for
	// the manifold operating on it.
	ErrStateType = errors.New("state: state value has wrong type for manifold")
)

// State is an opaque state value. Its concrete layout is owned by the
// manifold that allocated it; callers pass it around without inspecting it.
type State any

// Manifold is the surface the control layer needs from a state space.
type Manifold interface {
	Name() string
	Dimension() int
	AllocState() State
	CopyState(dst, src State)
	EqualStates(a, b State) bool
}

// Distancer is implemented by manifolds that can measure distance between
// two of their states.
type Distancer interface {
	Distance(a, b State) float64
}

// Vector is the state value of a RealVector manifold.
type Vector struct {
	Values []float64
}

// RealVector is a bounded R^n state manifold.
type RealVector struct {
	name string
	low  []float64
	high []float64
}

func NewRealVector(name string, low, high []float64) (*RealVector, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("%w: %d low bounds vs %d high bounds", ErrBounds, len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, fmt.Errorf("%w: low[%d]=%g > high[%d]=%g", ErrBounds, i, low[i], i, high[i])
		}
	}
	m := &RealVector{name: name}
	m.low = append(m.low, low...)
	m.high = append(m.high, high...)
	return m, nil
}

func (m *RealVector) Name() string       { return m.name }
func (m *RealVector) Dimension() int     { return len(m.low) }
func (m *RealVector) Bounds() ([]float64, []float64) { return m.low, m.high }

func (m *RealVector) AllocState() State {
	return &Vector{Values: make([]float64, len(m.low))}
}

func (m *RealVector) CopyState(dst, src State) {
	d := dst.(*Vector)
	s := src.(*Vector)
	copy(d.Values, s.Values)
}

func (m *RealVector) EqualStates(a, b State) bool {
	av := a.(*Vector)
	bv := b.(*Vector)
	if len(av.Values) != len(bv.Values) {
		return false
	}
	for i := range av.Values {
		if av.Values[i] != bv.Values[i] {
			return false
		}
	}
	return true
}

func (m *RealVector) Distance(a, b State) float64 {
	av := a.(*Vector)
	bv := b.(*Vector)
	sum := 0.0
	for i := range av.Values {
		d := av.Values[i] - bv.Values[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Integer is the state value of a Discrete manifold.
type Integer struct {
	Value int
}

// Discrete is a state manifold over the integers in [min, max].
type Discrete struct {
	name string
	min  int
	max  int
}

func NewDiscrete(name string, min, max int) (*Discrete, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min=%d > max=%d", ErrBounds, min, max)
	}
	return &Discrete{name: name, min: min, max: max}, nil
}

func (m *Discrete) Name() string        { return m.name }
func (m *Discrete) Dimension() int      { return 1 }
func (m *Discrete) Range() (int, int)   { return m.min, m.max }
func (m *Discrete) AllocState() State   { return &Integer{Value: m.min} }

func (m *Discrete) CopyState(dst, src State) {
	dst.(*Integer).Value = src.(*Integer).Value
}

func (m *Discrete) EqualStates(a, b State) bool {
	return a.(*Integer).Value == b.(*Integer).Value
}

// Clamp limits v to the manifold's range.
func (m *Discrete) Clamp(v int) int {
	if v < m.min {
		return m.min
	}
	if v > m.max {
		return m.max
	}
	return v
}
