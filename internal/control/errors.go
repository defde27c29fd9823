package control

import "errors"

// Domain errors for manifold operations. All of these indicate programmer
// or configuration error, not transient conditions; callers should not retry.
var (
	// ErrNoPropagator indicates Propagate was called on a manifold with
	// neither an injected propagation function nor dynamics of its own.
	ErrNoPropagator = errors.New("control: no propagation routine configured for manifold")

	// ErrLocked indicates an attempt to add a sub-manifold after Lock.
	ErrLocked = errors.New("control: manifold is locked, no further sub-manifolds can be added")

	// ErrUnknownSubmanifold indicates a sub-manifold lookup by an
	// out-of-range index or an unmatched name.
	ErrUnknownSubmanifold = errors.New("control: no such sub-manifold")

	// ErrControlType indicates a control value of the wrong concrete kind
	// for the manifold operating on it.
	ErrControlType = errors.New("control: control value has wrong type for manifold")

	// ErrStateType indicates a state value whose shape does not match the
	// manifold's bound state manifold.
	ErrStateType = errors.New("control: state value has wrong type for manifold")

	// ErrNotReversible indicates a negative-duration propagation on a
	// manifold that cannot propagate backward.
	ErrNotReversible = errors.New("control: manifold cannot propagate backward")
)
