// Package path stores propagated trajectories: the states visited, the
// controls applied, and how long each control ran. A path owns copies of
// everything appended to it; Close releases its controls back to the
// manifold that allocated them.
package path

import (
	"errors"
	"fmt"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/state"
)

var (
	// ErrEmpty indicates an operation that requires a started path.
	ErrEmpty = errors.New("path: path has no start state")

	// ErrMismatch indicates the stored states do not replay from the
	// stored controls.
	ErrMismatch = errors.New("path: stored states diverge from replayed propagation")
)

// Path is a propagated trajectory through one control manifold. It holds
// n+1 states, n controls, and n durations.
type Path struct {
	manifold  control.Manifold
	states    []state.State
	controls  []control.Control
	durations []float64
}

func New(m control.Manifold) *Path {
	return &Path{manifold: m}
}

// Start records a copy of the initial state. It resets any previous content.
func (p *Path) Start(s state.State) {
	sm := p.manifold.States()
	first := sm.AllocState()
	sm.CopyState(first, s)
	p.states = p.states[:0]
	p.controls = p.controls[:0]
	p.durations = p.durations[:0]
	p.states = append(p.states, first)
}

// Append records one propagation segment: the control applied, how long it
// ran, and the state it produced. The path stores its own copies.
func (p *Path) Append(c control.Control, duration float64, result state.State) error {
	if len(p.states) == 0 {
		return ErrEmpty
	}
	cc, err := p.manifold.AllocControl()
	if err != nil {
		return err
	}
	if err := p.manifold.CopyControl(cc, c); err != nil {
		p.manifold.FreeControl(cc)
		return err
	}

	sm := p.manifold.States()
	sc := sm.AllocState()
	sm.CopyState(sc, result)

	p.controls = append(p.controls, cc)
	p.durations = append(p.durations, duration)
	p.states = append(p.states, sc)
	return nil
}

// Len returns the number of segments.
func (p *Path) Len() int { return len(p.controls) }

func (p *Path) States() []state.State       { return p.states }
func (p *Path) Controls() []control.Control { return p.controls }
func (p *Path) Durations() []float64        { return p.durations }

// Duration returns the total time spanned by the path.
func (p *Path) Duration() float64 {
	total := 0.0
	for _, d := range p.durations {
		total += d
	}
	return total
}

// Length returns the geometric length of the path under the state
// manifold's distance, or zero if the manifold cannot measure distance.
func (p *Path) Length() float64 {
	d, ok := p.manifold.States().(state.Distancer)
	if !ok {
		return 0
	}
	length := 0.0
	for i := 1; i < len(p.states); i++ {
		length += d.Distance(p.states[i-1], p.states[i])
	}
	return length
}

// Check validates the segment bookkeeping.
func (p *Path) Check() error {
	if len(p.states) == 0 {
		return ErrEmpty
	}
	if len(p.states) != len(p.controls)+1 {
		return fmt.Errorf("path: %d states for %d controls", len(p.states), len(p.controls))
	}
	if len(p.durations) != len(p.controls) {
		return fmt.Errorf("path: %d durations for %d controls", len(p.durations), len(p.controls))
	}
	return nil
}

// Replay re-propagates the stored controls from the start state and
// verifies each stored state is reproduced.
func (p *Path) Replay() error {
	if err := p.Check(); err != nil {
		return err
	}
	sm := p.manifold.States()
	cur := sm.AllocState()
	next := sm.AllocState()
	sm.CopyState(cur, p.states[0])

	for i, c := range p.controls {
		if err := p.manifold.Propagate(cur, c, p.durations[i], next); err != nil {
			return fmt.Errorf("replaying segment %d: %w", i, err)
		}
		if !sm.EqualStates(next, p.states[i+1]) {
			return fmt.Errorf("%w: segment %d", ErrMismatch, i)
		}
		cur, next = next, cur
	}
	return nil
}

// Close frees the stored controls back to the manifold and drops the
// stored states.
func (p *Path) Close() {
	for _, c := range p.controls {
		p.manifold.FreeControl(c)
	}
	p.states = nil
	p.controls = nil
	p.durations = nil
}
