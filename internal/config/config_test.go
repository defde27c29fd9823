package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.Steps <= 0 {
		t.Error("DefaultConfig has invalid Steps")
	}
	if cfg.Vehicle.Gears < 1 {
		t.Error("DefaultConfig has no gears")
	}
	if cfg.Start.Gear < 1 {
		t.Error("DefaultConfig starts out of gear")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenario = "test"
	cfg.Seed = 1234
	cfg.Start.X = 3.5
	cfg.Vehicle.MaxTurn = 0.25

	p := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := Save(p, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPartialOverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("dt: 0.02\nstart:\n  x: 7\n")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dt != 0.02 {
		t.Errorf("Dt = %v, want 0.02", cfg.Dt)
	}
	if cfg.Start.X != 7 {
		t.Errorf("Start.X = %v, want 7", cfg.Start.X)
	}
	if cfg.Steps != DefaultSteps {
		t.Errorf("Steps = %v, want default %v", cfg.Steps, DefaultSteps)
	}
}

func TestPresets(t *testing.T) {
	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("listed preset %q not retrievable", name)
		}
		if cfg.Dt <= 0 || cfg.Steps <= 0 {
			t.Errorf("preset %q has invalid timing", name)
		}
	}
}
