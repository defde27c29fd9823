package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.1
	DefaultSteps    = 200
	DefaultResample = 10
	DefaultExtent   = 50.0
	DefaultGears    = 5
	DefaultMaxSpeed = 2.0
	DefaultMaxTurn  = 1.0
)

type Config struct {
	Scenario string        `yaml:"scenario"`
	Dt       float64       `yaml:"dt"`
	Steps    int           `yaml:"steps"`
	Seed     int64         `yaml:"seed"`
	Resample int           `yaml:"resample"`
	Start    StartConfig   `yaml:"start"`
	Vehicle  VehicleConfig `yaml:"vehicle"`
}

type StartConfig struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"`
	Gear    int     `yaml:"gear"`
}

type VehicleConfig struct {
	Extent   float64 `yaml:"extent"`
	Gears    int     `yaml:"gears"`
	MaxSpeed float64 `yaml:"max_speed"`
	MaxTurn  float64 `yaml:"max_turn"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "vehicle",
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		Resample: DefaultResample,
		Start:    StartConfig{Gear: 1},
		Vehicle: VehicleConfig{
			Extent:   DefaultExtent,
			Gears:    DefaultGears,
			MaxSpeed: DefaultMaxSpeed,
			MaxTurn:  DefaultMaxTurn,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
