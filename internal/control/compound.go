package control

import (
	"fmt"
	"io"

	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Composite is the control value of a Compound manifold: one owned child
// control per sub-manifold, in child order. A Composite allocated before a
// later AddSubmanifold call must not be passed back to the manifold.
type Composite struct {
	Components []Control
}

// Compound composes an ordered list of control manifolds into one hybrid
// manifold. Its dimension, control lifecycle, and propagation all aggregate
// recursively over the children, unless a propagation override is injected.
//
// A Compound is Open until Lock is called; afterwards the child list is
// immutable for the lifetime of the instance.
type Compound struct {
	*Base
	components []Manifold
	locked     bool
}

// NewCompound builds an empty compound control manifold over states, which
// is typically a *state.Compound whose component ordering matches the
// sub-manifolds added afterwards.
func NewCompound(reg *registry.Names, states state.Manifold) (*Compound, error) {
	b, err := NewBase(reg, states)
	if err != nil {
		return nil, err
	}
	return &Compound{Base: b}, nil
}

// AddSubmanifold appends m to the child list. Children are shared: the same
// manifold may be composed into several compounds.
func (c *Compound) AddSubmanifold(m Manifold) error {
	if c.locked {
		return fmt.Errorf("%w: %q", ErrLocked, c.Name())
	}
	c.components = append(c.components, m)
	return nil
}

// Lock freezes the child list. There is no way back to the open state.
func (c *Compound) Lock() { c.locked = true }

// Locked reports whether the child list is frozen.
func (c *Compound) Locked() bool { return c.locked }

func (c *Compound) SubmanifoldCount() int { return len(c.components) }

func (c *Compound) Submanifold(index int) (Manifold, error) {
	if index < 0 || index >= len(c.components) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrUnknownSubmanifold, index, len(c.components))
	}
	return c.components[index], nil
}

func (c *Compound) SubmanifoldByName(name string) (Manifold, error) {
	for _, sub := range c.components {
		if sub.Name() == name {
			return sub, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSubmanifold, name)
}

func (c *Compound) Dimension() int {
	dim := 0
	for _, sub := range c.components {
		dim += sub.Dimension()
	}
	return dim
}

// AllocControl allocates a Composite with one slot per child. If a child
// allocation fails, the slots already allocated are freed before the error
// is returned, so the failure path leaks nothing.
func (c *Compound) AllocControl() (Control, error) {
	cc := &Composite{Components: make([]Control, len(c.components))}
	for i, sub := range c.components {
		child, err := sub.AllocControl()
		if err != nil {
			for j := 0; j < i; j++ {
				c.components[j].FreeControl(cc.Components[j])
			}
			return nil, fmt.Errorf("allocating slot %d of %q: %w", i, c.Name(), err)
		}
		cc.Components[i] = child
	}
	return cc, nil
}

func (c *Compound) FreeControl(ctrl Control) {
	cc, ok := ctrl.(*Composite)
	if !ok {
		return
	}
	for i, sub := range c.components {
		sub.FreeControl(cc.Components[i])
	}
	cc.Components = nil
}

func (c *Compound) CopyControl(dst, src Control) error {
	cdst, err := c.composite(dst)
	if err != nil {
		return err
	}
	csrc, err := c.composite(src)
	if err != nil {
		return err
	}
	for i, sub := range c.components {
		if err := sub.CopyControl(cdst.Components[i], csrc.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compound) EqualControls(a, b Control) bool {
	ca, err := c.composite(a)
	if err != nil {
		return false
	}
	cb, err := c.composite(b)
	if err != nil {
		return false
	}
	for i, sub := range c.components {
		if !sub.EqualControls(ca.Components[i], cb.Components[i]) {
			return false
		}
	}
	return true
}

func (c *Compound) NullControl(ctrl Control) error {
	cc, err := c.composite(ctrl)
	if err != nil {
		return err
	}
	for i, sub := range c.components {
		if err := sub.NullControl(cc.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

// AllocSampler asks every child for a sampler and collects them in child
// order. Each child sampler is owned by the returned compound sampler.
func (c *Compound) AllocSampler() Sampler {
	samplers := make([]Sampler, len(c.components))
	for i, sub := range c.components {
		samplers[i] = sub.AllocSampler()
	}
	return &CompoundSampler{manifold: c, samplers: samplers}
}

// Propagate fans the propagation out to the children, slot by slot. The
// state and result must be Composite states whose component ordering matches
// the child ordering. An injected propagation override short-circuits the
// recursion entirely.
func (c *Compound) Propagate(s state.State, ctrl Control, duration float64, result state.State) error {
	if fn := c.PropagationFunc(); fn != nil {
		return fn(s, ctrl, duration, result)
	}
	if duration < 0 && !c.CanPropagateBackward() {
		return fmt.Errorf("%w: %q, duration %g", ErrNotReversible, c.Name(), duration)
	}

	cs, err := c.compositeState(s)
	if err != nil {
		return err
	}
	cr, err := c.compositeState(result)
	if err != nil {
		return err
	}
	cc, err := c.composite(ctrl)
	if err != nil {
		return err
	}

	for i, sub := range c.components {
		if err := sub.Propagate(cs.Components[i], cc.Components[i], duration, cr.Components[i]); err != nil {
			return fmt.Errorf("propagating slot %d of %q: %w", i, c.Name(), err)
		}
	}
	return nil
}

// CanPropagateBackward is the conjunction over all children, computed fresh
// on every call since children may change their own answer.
func (c *Compound) CanPropagateBackward() bool {
	for _, sub := range c.components {
		if !sub.CanPropagateBackward() {
			return false
		}
	}
	return true
}

// ValueAt walks the children in order, probing successive local indices
// until a child reports no further slots, and accumulates a running
// flattened index across children. Children may expose fewer addressable
// slots than their nominal dimension.
func (c *Compound) ValueAt(ctrl Control, index int) *float64 {
	cc, err := c.composite(ctrl)
	if err != nil {
		return nil
	}
	idx := 0
	for i, sub := range c.components {
		for j := 0; j <= index; j++ {
			va := sub.ValueAt(cc.Components[i], j)
			if va == nil {
				break
			}
			if idx == index {
				return va
			}
			idx++
		}
	}
	return nil
}

func (c *Compound) PrintControl(ctrl Control, w io.Writer) {
	fmt.Fprintln(w, "Compound control [")
	if cc, err := c.composite(ctrl); err == nil {
		for i, sub := range c.components {
			sub.PrintControl(cc.Components[i], w)
		}
	}
	fmt.Fprintln(w, "]")
}

func (c *Compound) PrintSettings(w io.Writer) {
	fmt.Fprintf(w, "Compound control manifold %q [\n", c.Name())
	for _, sub := range c.components {
		sub.PrintSettings(w)
	}
	fmt.Fprintln(w, "]")
}

// Setup initializes every child in order, then the compound itself, so
// children are always ready before the parent observes itself as ready.
func (c *Compound) Setup() error {
	for _, sub := range c.components {
		if err := sub.Setup(); err != nil {
			return err
		}
	}
	return c.Base.Setup()
}

func (c *Compound) composite(ctrl Control) (*Composite, error) {
	cc, ok := ctrl.(*Composite)
	if !ok {
		return nil, fmt.Errorf("%w: %q got %T", ErrControlType, c.Name(), ctrl)
	}
	if len(cc.Components) != len(c.components) {
		return nil, fmt.Errorf("%w: %q has %d sub-manifolds, control has %d slots",
			ErrControlType, c.Name(), len(c.components), len(cc.Components))
	}
	return cc, nil
}

func (c *Compound) compositeState(s state.State) (*state.Composite, error) {
	cs, ok := s.(*state.Composite)
	if !ok {
		return nil, fmt.Errorf("%w: %q got %T", ErrStateType, c.Name(), s)
	}
	if len(cs.Components) != len(c.components) {
		return nil, fmt.Errorf("%w: %q has %d sub-manifolds, state has %d components",
			ErrStateType, c.Name(), len(c.components), len(cs.Components))
	}
	return cs, nil
}
