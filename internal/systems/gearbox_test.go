package systems

import (
	"errors"
	"testing"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/manifolds"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

func TestGearboxShift(t *testing.T) {
	tests := []struct {
		name  string
		gear  int
		shift int
		want  int
	}{
		{"up", 2, 1, 3},
		{"down", 2, -1, 1},
		{"hold", 2, 0, 2},
		{"clamp high", 5, 1, 5},
		{"clamp low", 1, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGearbox(registry.New(), "g", 5)
			if err != nil {
				t.Fatalf("NewGearbox: %v", err)
			}

			s := &state.Integer{Value: tt.gear}
			c := &manifolds.Integer{Value: tt.shift}
			r := &state.Integer{}

			if err := g.Propagate(s, c, 0.5, r); err != nil {
				t.Fatalf("Propagate: %v", err)
			}
			if r.Value != tt.want {
				t.Errorf("gear = %d, want %d", r.Value, tt.want)
			}
		})
	}
}

func TestGearboxNotReversible(t *testing.T) {
	g, _ := NewGearbox(registry.New(), "g", 5)

	if g.CanPropagateBackward() {
		t.Error("gear shifts must not report backward capability")
	}
	err := g.Propagate(&state.Integer{Value: 2}, &manifolds.Integer{Value: 1}, -1.0, &state.Integer{})
	if !errors.Is(err, control.ErrNotReversible) {
		t.Errorf("negative duration = %v, want ErrNotReversible", err)
	}
}

func TestGearboxNoValueSlots(t *testing.T) {
	g, _ := NewGearbox(registry.New(), "g", 5)
	c, _ := g.AllocControl()
	if g.ValueAt(c, 0) != nil {
		t.Error("discrete controls expose no addressable scalar slots")
	}
	if g.Dimension() != 1 {
		t.Errorf("Dimension = %d, want 1", g.Dimension())
	}
}
