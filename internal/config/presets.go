package config

var Presets = map[string]*Config{
	"cruise": {
		Scenario: "vehicle", Dt: 0.1, Steps: 300, Resample: 30,
		Start: StartConfig{Gear: 3},
		Vehicle: VehicleConfig{
			Extent: 100, Gears: 5, MaxSpeed: 3.0, MaxTurn: 0.3,
		},
	},
	"parking": {
		Scenario: "vehicle", Dt: 0.05, Steps: 400, Resample: 5,
		Start: StartConfig{X: 10, Y: 10, Gear: 1},
		Vehicle: VehicleConfig{
			Extent: 20, Gears: 2, MaxSpeed: 0.5, MaxTurn: 1.5,
		},
	},
	"drift": {
		Scenario: "vehicle", Dt: 0.1, Steps: 250, Resample: 10,
		Start: StartConfig{Heading: 1.57, Gear: 2},
		Vehicle: VehicleConfig{
			Extent: 50, Gears: 5, MaxSpeed: 2.5, MaxTurn: 2.0,
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
