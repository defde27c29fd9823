package control

import "fmt"

// CompoundSampler samples a Composite control slot by slot, each slot using
// the sampler of its owning child manifold.
type CompoundSampler struct {
	manifold *Compound
	samplers []Sampler
}

// NewCompoundSampler assembles a compound sampler from caller-chosen child
// samplers, one per sub-manifold in child order. Use it when the default
// AllocSampler seeding is not wanted.
func NewCompoundSampler(c *Compound, samplers ...Sampler) (*CompoundSampler, error) {
	if len(samplers) != len(c.components) {
		return nil, fmt.Errorf("%w: %d samplers for %d sub-manifolds",
			ErrUnknownSubmanifold, len(samplers), len(c.components))
	}
	return &CompoundSampler{manifold: c, samplers: samplers}, nil
}

func (s *CompoundSampler) Sample(c Control) error {
	cc, err := s.manifold.composite(c)
	if err != nil {
		return err
	}
	if len(s.samplers) != len(cc.Components) {
		return fmt.Errorf("%w: sampler built for %d slots, control has %d",
			ErrControlType, len(s.samplers), len(cc.Components))
	}
	for i, sub := range s.samplers {
		if err := sub.Sample(cc.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *CompoundSampler) SampleNext(c Control, prev Control) error {
	cc, err := s.manifold.composite(c)
	if err != nil {
		return err
	}
	cp, err := s.manifold.composite(prev)
	if err != nil {
		return err
	}
	for i, sub := range s.samplers {
		if err := sub.SampleNext(cc.Components[i], cp.Components[i]); err != nil {
			return err
		}
	}
	return nil
}
