package control

import (
	"fmt"
	"io"

	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Base carries the state shared by every control manifold: the registered
// name, the bound state manifold, and the optional propagation override.
// Concrete manifolds embed *Base and provide the control lifecycle and
// dynamics themselves.
type Base struct {
	reg    *registry.Names
	states state.Manifold
	name   string
	prop   PropagateFunc
}

// NewBase registers the derived default name "Control[<state name>]" and
// fails if that name is already in use.
func NewBase(reg *registry.Names, states state.Manifold) (*Base, error) {
	name := "Control[" + states.Name() + "]"
	if err := reg.Register(name); err != nil {
		return nil, err
	}
	return &Base{reg: reg, states: states, name: name}, nil
}

func (b *Base) Name() string { return b.name }

// SetName renames the manifold through the registry, so the uniqueness
// invariant holds across the rename.
func (b *Base) SetName(name string) error {
	if err := b.reg.Rename(b.name, name); err != nil {
		return err
	}
	b.name = name
	return nil
}

func (b *Base) States() state.Manifold { return b.states }

// SetPropagationFunc injects an external propagation routine. A non-nil fn
// fully replaces the manifold's own dynamics; nil restores them.
func (b *Base) SetPropagationFunc(fn PropagateFunc) { b.prop = fn }

// PropagationFunc returns the injected routine, or nil if none is set.
func (b *Base) PropagationFunc() PropagateFunc { return b.prop }

// Propagate invokes the injected routine if one is set and fails with
// ErrNoPropagator otherwise. Manifolds with dynamics of their own shadow
// this method and consult PropagationFunc first.
func (b *Base) Propagate(s state.State, c Control, duration float64, result state.State) error {
	if b.prop != nil {
		return b.prop(s, c, duration, result)
	}
	return fmt.Errorf("%w: %q", ErrNoPropagator, b.name)
}

// CanPropagateBackward reports true; manifolds whose dynamics are not
// time-reversible shadow this.
func (b *Base) CanPropagateBackward() bool { return true }

// ValueAt reports no addressable slots.
func (b *Base) ValueAt(c Control, index int) *float64 { return nil }

func (b *Base) PrintControl(c Control, w io.Writer) {
	fmt.Fprintf(w, "Control instance: %v\n", c)
}

func (b *Base) PrintSettings(w io.Writer) {
	fmt.Fprintf(w, "Control manifold %q over state manifold %q\n", b.name, b.states.Name())
}

// Setup is a no-op hook; calling it repeatedly is safe.
func (b *Base) Setup() error { return nil }

// Close unregisters the manifold's name. The manifold must not be used
// afterwards.
func (b *Base) Close() error {
	return b.reg.Unregister(b.name)
}
