package systems

import (
	"math"
	"testing"

	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/manifolds"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

func newTestUnicycle(t *testing.T) *Unicycle {
	t.Helper()
	u, err := NewUnicycle(registry.New(), "test", 100)
	if err != nil {
		t.Fatalf("NewUnicycle: %v", err)
	}
	return u
}

func pose(x, y, th float64) *state.Vector {
	return &state.Vector{Values: []float64{x, y, th}}
}

func TestUnicyclePropagate(t *testing.T) {
	tests := []struct {
		name     string
		start    *state.Vector
		speed    float64
		turn     float64
		duration float64
		want     [3]float64
	}{
		{"straight east", pose(0, 0, 0), 1, 0, 2, [3]float64{2, 0, 0}},
		{"straight north", pose(1, 1, math.Pi / 2), 2, 0, 1, [3]float64{1, 3, math.Pi / 2}},
		{"quarter arc", pose(0, 0, 0), 1, 1, math.Pi / 2, [3]float64{1, 1, math.Pi / 2}},
		{"reverse", pose(0, 0, 0), -1, 0, 1, [3]float64{-1, 0, 0}},
		{"zero duration", pose(3, 4, 1), 1, 1, 0, [3]float64{3, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUnicycle(t)
			c := &manifolds.Vector{Values: []float64{tt.speed, tt.turn}}
			result := pose(0, 0, 0)

			if err := u.Propagate(tt.start, c, tt.duration, result); err != nil {
				t.Fatalf("Propagate: %v", err)
			}
			for i, want := range tt.want {
				if math.Abs(result.Values[i]-want) > 1e-9 {
					t.Errorf("result[%d] = %v, want %v", i, result.Values[i], want)
				}
			}
		})
	}
}

func TestUnicycleBackwardPropagation(t *testing.T) {
	u := newTestUnicycle(t)
	if !u.CanPropagateBackward() {
		t.Fatal("unicycle dynamics are time-reversible")
	}

	start := pose(1, 2, 0.3)
	c := &manifolds.Vector{Values: []float64{1.5, 0.7}}
	mid := pose(0, 0, 0)
	back := pose(0, 0, 0)

	if err := u.Propagate(start, c, 0.8, mid); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := u.Propagate(mid, c, -0.8, back); err != nil {
		t.Fatalf("backward: %v", err)
	}
	for i := range start.Values {
		if math.Abs(back.Values[i]-start.Values[i]) > 1e-9 {
			t.Errorf("back[%d] = %v, want %v", i, back.Values[i], start.Values[i])
		}
	}
}

func TestUnicycleOverride(t *testing.T) {
	u := newTestUnicycle(t)
	u.SetPropagationFunc(func(s state.State, c control.Control, duration float64, result state.State) error {
		result.(*state.Vector).Values[0] = 42
		return nil
	})

	result := pose(0, 0, 0)
	if err := u.Propagate(pose(0, 0, 0), &manifolds.Vector{Values: []float64{1, 0}}, 1, result); err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if result.Values[0] != 42 {
		t.Error("injected propagation function was not authoritative")
	}
}

func TestUnicycleTypeChecks(t *testing.T) {
	u := newTestUnicycle(t)
	good := &manifolds.Vector{Values: []float64{1, 0}}

	if err := u.Propagate(&state.Integer{}, good, 1, pose(0, 0, 0)); err == nil {
		t.Error("wrong state kind accepted")
	}
	if err := u.Propagate(pose(0, 0, 0), &manifolds.Integer{}, 1, pose(0, 0, 0)); err == nil {
		t.Error("wrong control kind accepted")
	}
}

func TestUnicycleParams(t *testing.T) {
	u := newTestUnicycle(t)

	if err := u.SetParam("max_speed", 5); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	low, high := u.Bounds()
	if low[0] != -5 || high[0] != 5 {
		t.Errorf("bounds = %v..%v after SetParam", low, high)
	}
	if err := u.SetParam("nope", 1); err == nil {
		t.Error("unknown param accepted")
	}
	if got := u.Params()["max_speed"]; got != 5 {
		t.Errorf("Params()[max_speed] = %v, want 5", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{5 * math.Pi / 2, math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
		{math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
