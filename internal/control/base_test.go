package control

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// fakeLeaf is a minimal leaf manifold for exercising the base and compound
// logic without pulling in the concrete manifolds.
type fakeLeaf struct {
	*Base
	dim      int
	slots    int
	backward bool
	allocErr error
	allocs   int
	frees    int
}

type fakeControl struct {
	owner  *fakeLeaf
	values []float64
}

func newFakeLeaf(t *testing.T, reg *registry.Names, name string, dim, slots int, backward bool) *fakeLeaf {
	t.Helper()
	sm, err := state.NewRealVector(name, make([]float64, dim), make([]float64, dim))
	if err != nil {
		t.Fatalf("state manifold: %v", err)
	}
	b, err := NewBase(reg, sm)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	return &fakeLeaf{Base: b, dim: dim, slots: slots, backward: backward}
}

func (f *fakeLeaf) Dimension() int { return f.dim }

func (f *fakeLeaf) AllocControl() (Control, error) {
	if f.allocErr != nil {
		return nil, f.allocErr
	}
	f.allocs++
	return &fakeControl{owner: f, values: make([]float64, f.slots)}, nil
}

func (f *fakeLeaf) FreeControl(c Control) { f.frees++ }

func (f *fakeLeaf) CopyControl(dst, src Control) error {
	copy(dst.(*fakeControl).values, src.(*fakeControl).values)
	return nil
}

func (f *fakeLeaf) EqualControls(a, b Control) bool {
	av := a.(*fakeControl).values
	bv := b.(*fakeControl).values
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

func (f *fakeLeaf) NullControl(c Control) error {
	v := c.(*fakeControl).values
	for i := range v {
		v[i] = 0
	}
	return nil
}

func (f *fakeLeaf) AllocSampler() Sampler { return &fakeSampler{} }

func (f *fakeLeaf) CanPropagateBackward() bool { return f.backward }

func (f *fakeLeaf) ValueAt(c Control, index int) *float64 {
	fc := c.(*fakeControl)
	if index < 0 || index >= f.slots {
		return nil
	}
	return &fc.values[index]
}

type fakeSampler struct {
	samples int
}

func (s *fakeSampler) Sample(c Control) error {
	s.samples++
	v := c.(*fakeControl).values
	for i := range v {
		v[i] = float64(s.samples)
	}
	return nil
}

func (s *fakeSampler) SampleNext(c Control, prev Control) error {
	return s.Sample(c)
}

var _ Manifold = (*fakeLeaf)(nil)

func TestBaseNameRegistration(t *testing.T) {
	reg := registry.New()
	sm, _ := state.NewRealVector("pose", []float64{0}, []float64{1})

	b, err := NewBase(reg, sm)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	if got, want := b.Name(), "Control[pose]"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	// A second manifold over the same state manifold collides.
	if _, err := NewBase(reg, sm); !errors.Is(err, registry.ErrDuplicateName) {
		t.Errorf("second NewBase = %v, want ErrDuplicateName", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if reg.InUse("Control[pose]") {
		t.Error("name still registered after Close")
	}
}

func TestBaseSetName(t *testing.T) {
	reg := registry.New()
	smA, _ := state.NewRealVector("a", []float64{0}, []float64{1})
	smB, _ := state.NewRealVector("b", []float64{0}, []float64{1})

	ma, _ := NewBase(reg, smA)
	mb, _ := NewBase(reg, smB)

	if err := ma.SetName("Control[b]"); !errors.Is(err, registry.ErrDuplicateName) {
		t.Errorf("SetName to taken name = %v, want ErrDuplicateName", err)
	}
	if got := ma.Name(); got != "Control[a]" {
		t.Errorf("name changed after failed rename: %q", got)
	}

	if err := ma.SetName("steering"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if got := ma.Name(); got != "steering" {
		t.Errorf("Name() = %q, want %q", got, "steering")
	}
	if reg.InUse("Control[a]") {
		t.Error("old name still registered after rename")
	}
	_ = mb
}

func TestBasePropagateUnconfigured(t *testing.T) {
	reg := registry.New()
	sm, _ := state.NewRealVector("p", []float64{0}, []float64{1})
	b, _ := NewBase(reg, sm)

	s := sm.AllocState()
	r := sm.AllocState()
	err := b.Propagate(s, nil, 1.0, r)
	if !errors.Is(err, ErrNoPropagator) {
		t.Errorf("Propagate without routine = %v, want ErrNoPropagator", err)
	}
}

func TestBasePropagateOverride(t *testing.T) {
	reg := registry.New()
	sm, _ := state.NewRealVector("p", []float64{-10}, []float64{10})
	b, _ := NewBase(reg, sm)

	b.SetPropagationFunc(func(s state.State, c Control, duration float64, result state.State) error {
		result.(*state.Vector).Values[0] = s.(*state.Vector).Values[0] + duration
		return nil
	})

	s := sm.AllocState()
	s.(*state.Vector).Values[0] = 2
	r := sm.AllocState()
	if err := b.Propagate(s, nil, 1.5, r); err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if got := r.(*state.Vector).Values[0]; got != 3.5 {
		t.Errorf("result = %v, want 3.5", got)
	}

	// Clearing the override restores the unconfigured failure.
	b.SetPropagationFunc(nil)
	if err := b.Propagate(s, nil, 1.0, r); !errors.Is(err, ErrNoPropagator) {
		t.Errorf("Propagate after clearing = %v, want ErrNoPropagator", err)
	}
}

func TestBaseDefaults(t *testing.T) {
	reg := registry.New()
	sm, _ := state.NewRealVector("p", []float64{0}, []float64{1})
	b, _ := NewBase(reg, sm)

	if !b.CanPropagateBackward() {
		t.Error("base manifold should report backward capability")
	}
	if b.ValueAt(nil, 0) != nil {
		t.Error("base manifold should report no value slots")
	}
	for i := 0; i < 3; i++ {
		if err := b.Setup(); err != nil {
			t.Fatalf("Setup call %d: %v", i, err)
		}
	}

	var buf strings.Builder
	b.PrintSettings(&buf)
	if !strings.Contains(buf.String(), "Control[p]") {
		t.Errorf("PrintSettings missing name: %q", buf.String())
	}
}

func TestScenarioDuplicateAndRename(t *testing.T) {
	// Construct "A"; a second "A" fails; rename first to "B"; renaming the
	// never-registered "C" fails.
	reg := registry.New()
	smA, _ := state.NewRealVector("x", []float64{0}, []float64{1})
	ma, _ := NewBase(reg, smA)

	if err := ma.SetName("A"); err != nil {
		t.Fatalf("SetName(A): %v", err)
	}
	if err := reg.Register("A"); !errors.Is(err, registry.ErrDuplicateName) {
		t.Errorf("second A = %v, want ErrDuplicateName", err)
	}
	if err := ma.SetName("B"); err != nil {
		t.Fatalf("rename A->B: %v", err)
	}
	if err := reg.Rename("C", "D"); !errors.Is(err, registry.ErrUnknownName) {
		t.Errorf("rename C->D = %v, want ErrUnknownName", err)
	}
}

func BenchmarkBasePropagateOverride(b *testing.B) {
	reg := registry.New()
	sm, _ := state.NewRealVector("p", []float64{-10}, []float64{10})
	m, _ := NewBase(reg, sm)
	m.SetPropagationFunc(func(s state.State, c Control, duration float64, result state.State) error {
		result.(*state.Vector).Values[0] = s.(*state.Vector).Values[0] + duration
		return nil
	})

	s := sm.AllocState()
	r := sm.AllocState()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := m.Propagate(s, nil, 0.1, r); err != nil {
			b.Fatal(err)
		}
	}
}

func ExampleBase_Propagate() {
	reg := registry.New()
	sm, _ := state.NewRealVector("line", []float64{-100}, []float64{100})
	m, _ := NewBase(reg, sm)
	m.SetPropagationFunc(func(s state.State, c Control, duration float64, result state.State) error {
		result.(*state.Vector).Values[0] = s.(*state.Vector).Values[0] + 2*duration
		return nil
	})

	src := sm.AllocState()
	dst := sm.AllocState()
	if err := m.Propagate(src, nil, 3, dst); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(dst.(*state.Vector).Values[0])
	// Output: 6
}
