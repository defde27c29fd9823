// Package systems provides concrete dynamics built on the control-manifold
// core: a continuous unicycle drive, a discrete gearbox, and a hybrid
// vehicle composing the two.
package systems

import (
	"fmt"
	"math"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/manifolds"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Unicycle is a planar vehicle with state [x y heading] and control
// [speed turnrate]. Propagation is the exact arc traced under constant
// controls, so it is valid for negative durations too.
type Unicycle struct {
	*manifolds.RealVector
	poses    *state.RealVector
	maxSpeed float64
	maxTurn  float64
}

const headingEps = 1e-9

func NewUnicycle(reg *registry.Names, name string, extent float64) (*Unicycle, error) {
	maxSpeed := 2.0
	maxTurn := 1.0

	poses, err := state.NewRealVector(name,
		[]float64{-extent, -extent, -math.Pi},
		[]float64{extent, extent, math.Pi})
	if err != nil {
		return nil, err
	}
	rv, err := manifolds.NewRealVector(reg, poses,
		[]float64{-maxSpeed, -maxTurn},
		[]float64{maxSpeed, maxTurn})
	if err != nil {
		return nil, err
	}
	return &Unicycle{RealVector: rv, poses: poses, maxSpeed: maxSpeed, maxTurn: maxTurn}, nil
}

func (u *Unicycle) Propagate(s state.State, c control.Control, duration float64, result state.State) error {
	if fn := u.PropagationFunc(); fn != nil {
		return fn(s, c, duration, result)
	}

	sv, ok := s.(*state.Vector)
	if !ok || len(sv.Values) != 3 {
		return fmt.Errorf("%w: %q wants a 3-value pose, got %T", control.ErrStateType, u.Name(), s)
	}
	rv, ok := result.(*state.Vector)
	if !ok || len(rv.Values) != 3 {
		return fmt.Errorf("%w: %q wants a 3-value pose result, got %T", control.ErrStateType, u.Name(), result)
	}
	cv, ok := c.(*manifolds.Vector)
	if !ok || len(cv.Values) != 2 {
		return fmt.Errorf("%w: %q wants a 2-value control, got %T", control.ErrControlType, u.Name(), c)
	}

	x, y, th := sv.Values[0], sv.Values[1], sv.Values[2]
	v, w := cv.Values[0], cv.Values[1]

	if math.Abs(w) < headingEps {
		x += v * math.Cos(th) * duration
		y += v * math.Sin(th) * duration
	} else {
		x += v / w * (math.Sin(th+w*duration) - math.Sin(th))
		y -= v / w * (math.Cos(th+w*duration) - math.Cos(th))
		th += w * duration
	}

	rv.Values[0] = x
	rv.Values[1] = y
	rv.Values[2] = normalizeAngle(th)
	return nil
}

// Params reports the tunable vehicle parameters.
func (u *Unicycle) Params() map[string]float64 {
	return map[string]float64{
		"max_speed": u.maxSpeed,
		"max_turn":  u.maxTurn,
	}
}

func (u *Unicycle) SetParam(name string, value float64) error {
	switch name {
	case "max_speed":
		u.maxSpeed = value
	case "max_turn":
		u.maxTurn = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return u.SetBounds(
		[]float64{-u.maxSpeed, -u.maxTurn},
		[]float64{u.maxSpeed, u.maxTurn})
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
