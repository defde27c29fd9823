package manifolds

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Integer is the control value of a Discrete manifold.
type Integer struct {
	Value int
}

// Discrete is a control manifold over the integers in [min, max]. Its
// nominal dimension is one, but it exposes no addressable scalar slots:
// generic samplers that walk flattened value addresses skip it. Discrete
// transitions are not time-reversible, so it reports no backward
// propagation capability.
type Discrete struct {
	*control.Base
	min int
	max int
}

func NewDiscrete(reg *registry.Names, states state.Manifold, min, max int) (*Discrete, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min=%d > max=%d", state.ErrBounds, min, max)
	}
	b, err := control.NewBase(reg, states)
	if err != nil {
		return nil, err
	}
	return &Discrete{Base: b, min: min, max: max}, nil
}

func (m *Discrete) Dimension() int { return 1 }

// Range returns the inclusive control range.
func (m *Discrete) Range() (int, int) { return m.min, m.max }

func (m *Discrete) AllocControl() (control.Control, error) {
	return &Integer{Value: m.min}, nil
}

func (m *Discrete) FreeControl(c control.Control) {}

func (m *Discrete) CopyControl(dst, src control.Control) error {
	d, err := m.integer(dst)
	if err != nil {
		return err
	}
	s, err := m.integer(src)
	if err != nil {
		return err
	}
	d.Value = s.Value
	return nil
}

func (m *Discrete) EqualControls(a, b control.Control) bool {
	av, err := m.integer(a)
	if err != nil {
		return false
	}
	bv, err := m.integer(b)
	if err != nil {
		return false
	}
	return av.Value == bv.Value
}

// NullControl resets c to the lower bound of the range.
func (m *Discrete) NullControl(c control.Control) error {
	v, err := m.integer(c)
	if err != nil {
		return err
	}
	v.Value = m.min
	return nil
}

func (m *Discrete) AllocSampler() control.Sampler {
	seed := time.Now().UnixNano() + samplerSeq.Add(1)
	return &IntegerSampler{m: m, rng: rand.New(rand.NewSource(seed))}
}

// NewIntegerSampler returns a sampler with a caller-chosen seed.
func NewIntegerSampler(m *Discrete, seed int64) *IntegerSampler {
	return &IntegerSampler{m: m, rng: rand.New(rand.NewSource(seed))}
}

func (m *Discrete) CanPropagateBackward() bool { return false }

func (m *Discrete) PrintControl(c control.Control, w io.Writer) {
	if v, err := m.integer(c); err == nil {
		fmt.Fprintf(w, "DiscreteControl %d\n", v.Value)
		return
	}
	m.Base.PrintControl(c, w)
}

func (m *Discrete) PrintSettings(w io.Writer) {
	fmt.Fprintf(w, "Discrete control manifold %q, range [%d, %d]\n", m.Name(), m.min, m.max)
}

func (m *Discrete) integer(c control.Control) (*Integer, error) {
	v, ok := c.(*Integer)
	if !ok {
		return nil, fmt.Errorf("%w: %q got %T", control.ErrControlType, m.Name(), c)
	}
	return v, nil
}

// IntegerSampler draws discrete controls uniformly from the manifold range.
// SampleNext moves at most one step away from prev.
type IntegerSampler struct {
	m   *Discrete
	rng *rand.Rand
}

func (s *IntegerSampler) Sample(c control.Control) error {
	v, err := s.m.integer(c)
	if err != nil {
		return err
	}
	v.Value = s.m.min + s.rng.Intn(s.m.max-s.m.min+1)
	return nil
}

func (s *IntegerSampler) SampleNext(c control.Control, prev control.Control) error {
	v, err := s.m.integer(c)
	if err != nil {
		return err
	}
	p, err := s.m.integer(prev)
	if err != nil {
		return err
	}
	val := p.Value + s.rng.Intn(3) - 1
	if val < s.m.min {
		val = s.m.min
	}
	if val > s.m.max {
		val = s.m.max
	}
	v.Value = val
	return nil
}
