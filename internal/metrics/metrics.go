package metrics

import "math"

// Metric is a streaming trajectory observer. Observe is called once per
// recorded row with the pose and the control that produced it.
type Metric interface {
	Name() string
	Observe(pose, ctrl []float64, t float64)
	Value() float64
	Reset()
}

// ControlEffort accumulates the mean absolute control magnitude.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(pose, ctrl []float64, t float64) {
	for _, val := range ctrl {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Displacement tracks the straight-line distance between the first
// observed position and the latest one.
type Displacement struct {
	first  []float64
	latest []float64
}

func NewDisplacement() *Displacement { return &Displacement{} }

func (d *Displacement) Name() string { return "displacement" }

func (d *Displacement) Observe(pose, ctrl []float64, t float64) {
	if len(pose) < 2 {
		return
	}
	if d.first == nil {
		d.first = []float64{pose[0], pose[1]}
	}
	d.latest = []float64{pose[0], pose[1]}
}

func (d *Displacement) Value() float64 {
	if d.first == nil || d.latest == nil {
		return 0
	}
	dx := d.latest[0] - d.first[0]
	dy := d.latest[1] - d.first[1]
	return math.Sqrt(dx*dx + dy*dy)
}

func (d *Displacement) Reset() {
	d.first = nil
	d.latest = nil
}

// Containment measures the fraction of observed positions that stay
// inside the box [-extent, extent] on both axes.
type Containment struct {
	extent     float64
	violations int
	samples    int
}

func NewContainment(extent float64) *Containment {
	return &Containment{extent: extent}
}

func (s *Containment) Name() string { return "containment" }

func (s *Containment) Observe(pose, ctrl []float64, t float64) {
	s.samples++
	for i := 0; i < 2 && i < len(pose); i++ {
		if math.Abs(pose[i]) > s.extent {
			s.violations++
			break
		}
	}
}

func (s *Containment) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Containment) Reset() {
	s.violations = 0
	s.samples = 0
}

// Collect runs every metric over aligned pose and control rows and
// returns the final values keyed by metric name. Rows beyond the
// shorter of the two slices observe an empty control.
func Collect(ms []Metric, times []float64, poses, controls [][]float64) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i := range poses {
		var ctrl []float64
		if i < len(controls) {
			ctrl = controls[i]
		}
		t := 0.0
		if i < len(times) {
			t = times[i]
		}
		for _, m := range ms {
			m.Observe(poses[i], ctrl, t)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
