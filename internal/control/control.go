package control

import (
	"io"

	"github.com/san-kum/kinoplan/internal/state"
)

// Control is an opaque control value. Its concrete layout is owned by the
// manifold that allocated it; generic code manipulates it only through that
// manifold's methods or through ValueAt.
type Control any

// PropagateFunc is an externally supplied propagation routine. When set on a
// manifold it fully replaces the manifold's own dynamics, including the
// compound recursion.
type PropagateFunc func(s state.State, c Control, duration float64, result state.State) error

// Manifold is the contract every control space satisfies. A planner
// allocates controls from a manifold, samples them, and repeatedly calls
// Propagate while growing a search tree.
type Manifold interface {
	// Name returns the process-unique name of the manifold.
	Name() string

	// SetName renames the manifold, failing if the new name is taken.
	SetName(name string) error

	// States returns the state manifold this control manifold acts on.
	States() state.Manifold

	// Dimension is the number of scalar degrees of freedom of a control.
	Dimension() int

	// AllocControl allocates a fresh control owned by this manifold.
	AllocControl() (Control, error)

	// FreeControl releases a control previously allocated by this manifold.
	FreeControl(c Control)

	// CopyControl copies src into dst. Both must belong to this manifold.
	CopyControl(dst, src Control) error

	// EqualControls reports whether two controls hold the same value.
	EqualControls(a, b Control) bool

	// NullControl resets c to the manifold's null (zero) control.
	NullControl(c Control) error

	// AllocSampler returns a new sampler bound to this manifold.
	AllocSampler() Sampler

	// Propagate computes result from applying c to s for the given
	// duration. If a propagation override is set it is authoritative.
	// A negative duration requires CanPropagateBackward.
	Propagate(s state.State, c Control, duration float64, result state.State) error

	// CanPropagateBackward reports whether negative durations are valid.
	CanPropagateBackward() bool

	// ValueAt returns the address of the index-th scalar slot inside c,
	// or nil if no slot exists at that flattened index.
	ValueAt(c Control, index int) *float64

	// PrintControl writes a human-readable rendering of c.
	PrintControl(c Control, w io.Writer)

	// PrintSettings writes a human-readable description of the manifold.
	PrintSettings(w io.Writer)

	// Setup performs one-time post-construction initialization. It is safe
	// to call more than once.
	Setup() error

	// Close releases the manifold's name back to the registry.
	Close() error
}

// Sampler generates control values for one manifold. Samplers are not safe
// for concurrent use; allocate one per worker.
type Sampler interface {
	// Sample overwrites c with a random control.
	Sample(c Control) error

	// SampleNext overwrites c with a perturbation of prev.
	SampleNext(c Control, prev Control) error
}
