// Package config loads solver tuning values: the physical constants and
// iteration caps the mesh generator, vehicle model, and QSS solver consume.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fsae-sim/laptimesim/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical solver defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/solver.defaults.json"

// SolverSettings holds the physical constants and numerical tolerances the
// solver uses. Every field is optional — a nil field falls back to the
// default returned by its Get* accessor — so partial JSON overrides
// (environment-specific tuning) are safe to layer on top of the defaults.
type SolverSettings struct {
	// Resolution is the target node length Δ for mesh generation, in metres.
	Resolution *float64 `json:"resolution,omitempty"`

	// Gravity is g, in m/s².
	Gravity *float64 `json:"gravity,omitempty"`

	// AirDensity is ρ, in kg/m³.
	AirDensity *float64 `json:"air_density,omitempty"`

	// LateralLimitMaxIterations caps the lateral-velocity-limit fixed point.
	LateralLimitMaxIterations *int `json:"lateral_limit_max_iterations,omitempty"`

	// LateralLimitMargin is the deliberate convergence margin subtracted from
	// each fixed-point iterate — must stay 0.001 to reproduce numerics.
	LateralLimitMargin *float64 `json:"lateral_limit_margin,omitempty"`

	// TransientMaxIterations caps the quasi-transient outer loop.
	TransientMaxIterations *int `json:"transient_max_iterations,omitempty"`

	// TransientTolerance is the lap-time convergence tolerance, in seconds.
	TransientTolerance *float64 `json:"transient_tolerance,omitempty"`

	// EnduranceMinLength is the minimum endurance event length, in metres.
	EnduranceMinLength *float64 `json:"endurance_min_length,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySolverSettings returns a SolverSettings with all fields nil.
// Use LoadSolverSettings to populate it from a defaults file.
func EmptySolverSettings() *SolverSettings {
	return &SolverSettings{}
}

// LoadSolverSettings loads a SolverSettings from a JSON file on disk. Fields
// omitted from the file retain their default values via the Get* accessors,
// so partial overrides are safe.
func LoadSolverSettings(path string) (*SolverSettings, error) {
	return LoadSolverSettingsFS(fsutil.OSFileSystem{}, path)
}

// LoadSolverSettingsFS is LoadSolverSettings against an injected
// fsutil.FileSystem, so tests can load tuning files from an
// fsutil.MemoryFileSystem instead of touching disk.
func LoadSolverSettingsFS(fsys fsutil.FileSystem, path string) (*SolverSettings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySolverSettings()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical solver defaults from
// DefaultConfigPath, searching from the current directory up to common
// repository roots. Panics if the file cannot be found — intended for test
// setup.
func MustLoadDefaultConfig() *SolverSettings {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSolverSettings(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that any set configuration values are within valid ranges.
func (c *SolverSettings) Validate() error {
	if c.Resolution != nil && *c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %f", *c.Resolution)
	}
	if c.Gravity != nil && *c.Gravity <= 0 {
		return fmt.Errorf("gravity must be positive, got %f", *c.Gravity)
	}
	if c.AirDensity != nil && *c.AirDensity <= 0 {
		return fmt.Errorf("air_density must be positive, got %f", *c.AirDensity)
	}
	if c.LateralLimitMaxIterations != nil && *c.LateralLimitMaxIterations <= 0 {
		return fmt.Errorf("lateral_limit_max_iterations must be positive, got %d", *c.LateralLimitMaxIterations)
	}
	if c.TransientMaxIterations != nil && *c.TransientMaxIterations <= 0 {
		return fmt.Errorf("transient_max_iterations must be positive, got %d", *c.TransientMaxIterations)
	}
	if c.TransientTolerance != nil && *c.TransientTolerance <= 0 {
		return fmt.Errorf("transient_tolerance must be positive, got %f", *c.TransientTolerance)
	}
	if c.EnduranceMinLength != nil && *c.EnduranceMinLength <= 0 {
		return fmt.Errorf("endurance_min_length must be positive, got %f", *c.EnduranceMinLength)
	}
	return nil
}

// GetResolution returns the mesh resolution Δ or the default (1 m).
func (c *SolverSettings) GetResolution() float64 {
	if c.Resolution == nil {
		return 1.0
	}
	return *c.Resolution
}

// GetGravity returns g or the default, 9.81 m/s².
func (c *SolverSettings) GetGravity() float64 {
	if c.Gravity == nil {
		return 9.81
	}
	return *c.Gravity
}

// GetAirDensity returns ρ or the default, 1.225 kg/m³.
func (c *SolverSettings) GetAirDensity() float64 {
	if c.AirDensity == nil {
		return 1.225
	}
	return *c.AirDensity
}

// GetLateralLimitMaxIterations returns the fixed-point iteration cap or the
// default, 10000.
func (c *SolverSettings) GetLateralLimitMaxIterations() int {
	if c.LateralLimitMaxIterations == nil {
		return 10000
	}
	return *c.LateralLimitMaxIterations
}

// GetLateralLimitMargin returns the fixed-point convergence margin or the
// default, 0.001 m/s — must be preserved to reproduce numerics.
func (c *SolverSettings) GetLateralLimitMargin() float64 {
	if c.LateralLimitMargin == nil {
		return 0.001
	}
	return *c.LateralLimitMargin
}

// GetTransientMaxIterations returns the outer-loop iteration cap or the
// default, 100.
func (c *SolverSettings) GetTransientMaxIterations() int {
	if c.TransientMaxIterations == nil {
		return 100
	}
	return *c.TransientMaxIterations
}

// GetTransientTolerance returns the lap-time convergence tolerance or the
// default, 1e-4 s.
func (c *SolverSettings) GetTransientTolerance() float64 {
	if c.TransientTolerance == nil {
		return 1e-4
	}
	return *c.TransientTolerance
}

// GetEnduranceMinLength returns the minimum endurance length or the
// default, 22000 m.
func (c *SolverSettings) GetEnduranceMinLength() float64 {
	if c.EnduranceMinLength == nil {
		return 22000.0
	}
	return *c.EnduranceMinLength
}
