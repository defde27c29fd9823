package state

// Composite is the state value of a Compound manifold: one owned component
// per child, in child order. Component ordering is part of the caller
// contract for compound propagation.
type Composite struct {
	Components []State
}

// Compound aggregates an ordered list of state manifolds into one.
type Compound struct {
	name       string
	components []Manifold
}

func NewCompound(name string, components ...Manifold) *Compound {
	c := &Compound{name: name}
	c.components = append(c.components, components...)
	return c
}

func (m *Compound) Name() string { return m.name }

func (m *Compound) Dimension() int {
	dim := 0
	for _, sub := range m.components {
		dim += sub.Dimension()
	}
	return dim
}

func (m *Compound) SubmanifoldCount() int { return len(m.components) }

func (m *Compound) Submanifold(i int) Manifold { return m.components[i] }

func (m *Compound) AllocState() State {
	s := &Composite{Components: make([]State, len(m.components))}
	for i, sub := range m.components {
		s.Components[i] = sub.AllocState()
	}
	return s
}

func (m *Compound) CopyState(dst, src State) {
	d := dst.(*Composite)
	s := src.(*Composite)
	for i, sub := range m.components {
		sub.CopyState(d.Components[i], s.Components[i])
	}
}

func (m *Compound) EqualStates(a, b State) bool {
	av := a.(*Composite)
	bv := b.(*Composite)
	for i, sub := range m.components {
		if !sub.EqualStates(av.Components[i], bv.Components[i]) {
			return false
		}
	}
	return true
}

// Distance sums the distances reported by children that support it.
func (m *Compound) Distance(a, b State) float64 {
	av := a.(*Composite)
	bv := b.(*Composite)
	sum := 0.0
	for i, sub := range m.components {
		if d, ok := sub.(Distancer); ok {
			sum += d.Distance(av.Components[i], bv.Components[i])
		}
	}
	return sum
}
