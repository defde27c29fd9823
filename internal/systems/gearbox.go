package systems

import (
	"fmt"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/manifolds"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Gearbox shifts a discrete gear state by a control in {-1, 0, +1}, clamped
// to the gear range. Shifts are not time-reversible, so the manifold keeps
// the Discrete default of no backward propagation.
type Gearbox struct {
	*manifolds.Discrete
	gears *state.Discrete
}

func NewGearbox(reg *registry.Names, name string, gears int) (*Gearbox, error) {
	sm, err := state.NewDiscrete(name, 1, gears)
	if err != nil {
		return nil, err
	}
	d, err := manifolds.NewDiscrete(reg, sm, -1, 1)
	if err != nil {
		return nil, err
	}
	return &Gearbox{Discrete: d, gears: sm}, nil
}

func (g *Gearbox) Propagate(s state.State, c control.Control, duration float64, result state.State) error {
	if fn := g.PropagationFunc(); fn != nil {
		return fn(s, c, duration, result)
	}
	if duration < 0 {
		return fmt.Errorf("%w: %q, duration %g", control.ErrNotReversible, g.Name(), duration)
	}

	sv, ok := s.(*state.Integer)
	if !ok {
		return fmt.Errorf("%w: %q wants an integer state, got %T", control.ErrStateType, g.Name(), s)
	}
	rv, ok := result.(*state.Integer)
	if !ok {
		return fmt.Errorf("%w: %q wants an integer result, got %T", control.ErrStateType, g.Name(), result)
	}
	cv, ok := c.(*manifolds.Integer)
	if !ok {
		return fmt.Errorf("%w: %q wants an integer control, got %T", control.ErrControlType, g.Name(), c)
	}

	rv.Value = g.gears.Clamp(sv.Value + cv.Value)
	return nil
}
