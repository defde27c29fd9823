package systems

import (
	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
)

// Vehicle is the hybrid demo system: a unicycle drive plus a gearbox,
// composed into one locked compound control manifold over a matching
// compound state manifold.
type Vehicle struct {
	*control.Compound
	Drive *Unicycle
	Gears *Gearbox
}

// NewVehicle builds and locks a vehicle named name. Sub-manifold names are
// derived from it, so several vehicles can share one registry as long as
// their names differ.
func NewVehicle(reg *registry.Names, name string, extent float64, gears int) (*Vehicle, error) {
	drive, err := NewUnicycle(reg, name+"/pose", extent)
	if err != nil {
		return nil, err
	}
	gb, err := NewGearbox(reg, name+"/gears", gears)
	if err != nil {
		drive.Close()
		return nil, err
	}

	states := state.NewCompound(name, drive.States(), gb.States())
	comp, err := control.NewCompound(reg, states)
	if err != nil {
		drive.Close()
		gb.Close()
		return nil, err
	}

	comp.AddSubmanifold(drive)
	comp.AddSubmanifold(gb)
	comp.Lock()
	if err := comp.Setup(); err != nil {
		comp.Close()
		drive.Close()
		gb.Close()
		return nil, err
	}

	return &Vehicle{Compound: comp, Drive: drive, Gears: gb}, nil
}

// StartState allocates a compound state at the given pose and gear.
func (v *Vehicle) StartState(x, y, heading float64, gear int) *state.Composite {
	s := v.States().AllocState().(*state.Composite)
	pose := s.Components[0].(*state.Vector)
	pose.Values[0] = x
	pose.Values[1] = y
	pose.Values[2] = heading
	s.Components[1].(*state.Integer).Value = gear
	return s
}

// Close releases the compound and both children.
func (v *Vehicle) Close() error {
	err := v.Compound.Close()
	if e := v.Drive.Close(); err == nil {
		err = e
	}
	if e := v.Gears.Close(); err == nil {
		err = e
	}
	return err
}
