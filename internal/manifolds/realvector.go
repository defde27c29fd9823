// Package manifolds provides concrete control manifolds: bounded real-vector
// controls and discrete integer controls. Compounding these covers hybrid
// systems mixing continuous and discrete actuation.
package manifolds

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// samplerSeq decorrelates samplers allocated in the same nanosecond.
var samplerSeq atomic.Int64

// Vector is the control value of a RealVector manifold.
type Vector struct {
	Values []float64
}

// RealVector is a control manifold over box-bounded R^n control values.
// Controls are pool-backed: FreeControl returns them for reuse by a later
// AllocControl. It has no dynamics of its own; propagation requires an
// injected propagation function unless a wrapping type provides one.
type RealVector struct {
	*control.Base
	low  []float64
	high []float64
	pool sync.Pool
}

func NewRealVector(reg *registry.Names, states state.Manifold, low, high []float64) (*RealVector, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("%w: %d low bounds vs %d high bounds", state.ErrBounds, len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, fmt.Errorf("%w: low[%d]=%g > high[%d]=%g", state.ErrBounds, i, low[i], i, high[i])
		}
	}
	b, err := control.NewBase(reg, states)
	if err != nil {
		return nil, err
	}
	m := &RealVector{Base: b}
	m.low = append(m.low, low...)
	m.high = append(m.high, high...)
	m.pool.New = func() any {
		return &Vector{Values: make([]float64, len(m.low))}
	}
	return m, nil
}

func (m *RealVector) Dimension() int { return len(m.low) }

// Bounds returns the per-component control bounds.
func (m *RealVector) Bounds() ([]float64, []float64) { return m.low, m.high }

// SetBounds replaces the control bounds. The dimension cannot change.
func (m *RealVector) SetBounds(low, high []float64) error {
	if len(low) != len(m.low) || len(high) != len(m.low) {
		return fmt.Errorf("%w: manifold %q has dimension %d", state.ErrBounds, m.Name(), len(m.low))
	}
	for i := range low {
		if low[i] > high[i] {
			return fmt.Errorf("%w: low[%d]=%g > high[%d]=%g", state.ErrBounds, i, low[i], i, high[i])
		}
	}
	copy(m.low, low)
	copy(m.high, high)
	return nil
}

func (m *RealVector) AllocControl() (control.Control, error) {
	return m.pool.Get().(*Vector), nil
}

func (m *RealVector) FreeControl(c control.Control) {
	v, ok := c.(*Vector)
	if !ok || len(v.Values) != len(m.low) {
		return
	}
	for i := range v.Values {
		v.Values[i] = 0
	}
	m.pool.Put(v)
}

func (m *RealVector) CopyControl(dst, src control.Control) error {
	d, err := m.vector(dst)
	if err != nil {
		return err
	}
	s, err := m.vector(src)
	if err != nil {
		return err
	}
	copy(d.Values, s.Values)
	return nil
}

func (m *RealVector) EqualControls(a, b control.Control) bool {
	av, err := m.vector(a)
	if err != nil {
		return false
	}
	bv, err := m.vector(b)
	if err != nil {
		return false
	}
	for i := range av.Values {
		if av.Values[i] != bv.Values[i] {
			return false
		}
	}
	return true
}

func (m *RealVector) NullControl(c control.Control) error {
	v, err := m.vector(c)
	if err != nil {
		return err
	}
	for i := range v.Values {
		v.Values[i] = 0
	}
	return nil
}

func (m *RealVector) AllocSampler() control.Sampler {
	seed := time.Now().UnixNano() + samplerSeq.Add(1)
	return &VectorSampler{m: m, rng: rand.New(rand.NewSource(seed))}
}

// NewVectorSampler returns a sampler with a caller-chosen seed, for
// reproducible sampling.
func NewVectorSampler(m *RealVector, seed int64) *VectorSampler {
	return &VectorSampler{m: m, rng: rand.New(rand.NewSource(seed))}
}

func (m *RealVector) ValueAt(c control.Control, index int) *float64 {
	v, err := m.vector(c)
	if err != nil || index < 0 || index >= len(v.Values) {
		return nil
	}
	return &v.Values[index]
}

func (m *RealVector) PrintControl(c control.Control, w io.Writer) {
	if v, err := m.vector(c); err == nil {
		fmt.Fprintf(w, "RealVectorControl %v\n", v.Values)
		return
	}
	m.Base.PrintControl(c, w)
}

func (m *RealVector) PrintSettings(w io.Writer) {
	fmt.Fprintf(w, "RealVector control manifold %q, bounds %v..%v\n", m.Name(), m.low, m.high)
}

func (m *RealVector) vector(c control.Control) (*Vector, error) {
	v, ok := c.(*Vector)
	if !ok {
		return nil, fmt.Errorf("%w: %q got %T", control.ErrControlType, m.Name(), c)
	}
	if len(v.Values) != len(m.low) {
		return nil, fmt.Errorf("%w: %q expects %d values, control has %d",
			control.ErrControlType, m.Name(), len(m.low), len(v.Values))
	}
	return v, nil
}

// VectorSampler draws real-vector controls uniformly within the manifold
// bounds. SampleNext perturbs each component by up to a tenth of its range,
// clamped back into bounds.
type VectorSampler struct {
	m   *RealVector
	rng *rand.Rand
}

func (s *VectorSampler) Sample(c control.Control) error {
	v, err := s.m.vector(c)
	if err != nil {
		return err
	}
	for i := range v.Values {
		v.Values[i] = s.m.low[i] + s.rng.Float64()*(s.m.high[i]-s.m.low[i])
	}
	return nil
}

func (s *VectorSampler) SampleNext(c control.Control, prev control.Control) error {
	v, err := s.m.vector(c)
	if err != nil {
		return err
	}
	p, err := s.m.vector(prev)
	if err != nil {
		return err
	}
	for i := range v.Values {
		span := s.m.high[i] - s.m.low[i]
		val := p.Values[i] + (s.rng.Float64()*2-1)*0.1*span
		if val < s.m.low[i] {
			val = s.m.low[i]
		}
		if val > s.m.high[i] {
			val = s.m.high[i]
		}
		v.Values[i] = val
	}
	return nil
}
