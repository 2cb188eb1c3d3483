package config

import (
	"testing"

	"github.com/fsae-sim/laptimesim/internal/fsutil"
)

func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.Resolution == nil {
		t.Fatal("Resolution must be set")
	}
	if cfg.Gravity == nil {
		t.Fatal("Gravity must be set")
	}
	if cfg.AirDensity == nil {
		t.Fatal("AirDensity must be set")
	}

	if *cfg.Resolution <= 0 {
		t.Errorf("Resolution must be positive, got %f", *cfg.Resolution)
	}
	if *cfg.Gravity != 9.81 {
		t.Errorf("Gravity = %f, want 9.81", *cfg.Gravity)
	}
	if *cfg.AirDensity != 1.225 {
		t.Errorf("AirDensity = %f, want 1.225", *cfg.AirDensity)
	}
}

func TestEmptySolverSettingsFallsBackToDefaults(t *testing.T) {
	cfg := EmptySolverSettings()

	if got, want := cfg.GetResolution(), 1.0; got != want {
		t.Errorf("GetResolution() = %f, want %f", got, want)
	}
	if got, want := cfg.GetGravity(), 9.81; got != want {
		t.Errorf("GetGravity() = %f, want %f", got, want)
	}
	if got, want := cfg.GetLateralLimitMargin(), 0.001; got != want {
		t.Errorf("GetLateralLimitMargin() = %f, want %f", got, want)
	}
	if got, want := cfg.GetTransientMaxIterations(), 100; got != want {
		t.Errorf("GetTransientMaxIterations() = %d, want %d", got, want)
	}
	if got, want := cfg.GetEnduranceMinLength(), 22000.0; got != want {
		t.Errorf("GetEnduranceMinLength() = %f, want %f", got, want)
	}
}

func TestSolverSettingsOverride(t *testing.T) {
	cfg := &SolverSettings{
		Gravity:    ptrFloat64(9.80665),
		AirDensity: ptrFloat64(1.2041),
	}

	if got, want := cfg.GetGravity(), 9.80665; got != want {
		t.Errorf("GetGravity() = %f, want %f", got, want)
	}
	if got, want := cfg.GetAirDensity(), 1.2041; got != want {
		t.Errorf("GetAirDensity() = %f, want %f", got, want)
	}
	// Untouched fields still fall back to defaults.
	if got, want := cfg.GetResolution(), 1.0; got != want {
		t.Errorf("GetResolution() = %f, want %f", got, want)
	}
}

func TestValidateRejectsNonPositiveResolution(t *testing.T) {
	cfg := &SolverSettings{Resolution: ptrFloat64(0)}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive resolution")
	}
}

func TestValidateRejectsNonPositiveIterationCaps(t *testing.T) {
	cfg := &SolverSettings{LateralLimitMaxIterations: ptrInt(-1)}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative iteration cap")
	}
}

func TestLoadSolverSettingsFSReadsFromMemoryFilesystem(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	data := []byte(`{"gravity": 9.8, "resolution": 2.5}`)
	if err := fsys.WriteFile("tuning.json", data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadSolverSettingsFS(fsys, "tuning.json")
	if err != nil {
		t.Fatalf("LoadSolverSettingsFS: %v", err)
	}
	if got, want := cfg.GetGravity(), 9.8; got != want {
		t.Errorf("GetGravity() = %f, want %f", got, want)
	}
	if got, want := cfg.GetResolution(), 2.5; got != want {
		t.Errorf("GetResolution() = %f, want %f", got, want)
	}
	// Untouched fields still fall back to defaults.
	if got, want := cfg.GetAirDensity(), 1.225; got != want {
		t.Errorf("GetAirDensity() = %f, want %f", got, want)
	}
}

func TestLoadSolverSettingsFSRejectsNonJSONExtension(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.WriteFile("tuning.yaml", []byte("gravity: 9.8"), 0644)

	if _, err := LoadSolverSettingsFS(fsys, "tuning.yaml"); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}
