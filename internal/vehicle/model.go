package vehicle

import (
	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// Model is the vehicle-model interface the solver drives. Implementations
// must be pure and deterministic: resolve carries no hidden state across
// calls.
type Model interface {
	// Resolve computes every scalar the solver needs at a given state,
	// track node and velocity.
	Resolve(state StateVariables, node mesh.TrackNode, velocity float64) (FullVehicleState, error)
	// LateralVelocityLimit returns the largest velocity sustainable with
	// lateral traction alone (Fx = 0).
	LateralVelocityLimit(state StateVariables, node mesh.TrackNode) (float64, error)
	// AccelerationAt returns net longitudinal acceleration while driving.
	AccelerationAt(state StateVariables, node mesh.TrackNode, velocity float64) (float64, error)
	// DecelerationAt returns the magnitude of maximum sustainable
	// deceleration while braking (always >= 0).
	DecelerationAt(state StateVariables, node mesh.TrackNode, velocity float64) (float64, error)
	// UpdateSOC advances state of charge given cumulative energy drawn
	// since the last update.
	UpdateSOC(soc, energyUsed float64) float64
}

// ModelFactory builds a concrete Model from its JSON configuration and the
// physical constants it needs (gravity, air density).
type ModelFactory func(params VehicleParams, gravity, airDensity float64) (Model, error)

var modelRegistry = map[string]ModelFactory{}

// RegisterVehicleModel registers a factory for the vehicle model tagged name.
func RegisterVehicleModel(name string, f ModelFactory) { modelRegistry[name] = f }

// NewModel looks up and constructs a registered vehicle model.
func NewModel(name string, params VehicleParams, gravity, airDensity float64) (Model, error) {
	f, ok := modelRegistry[name]
	if !ok {
		return nil, raceerr.VehicleConfig("unknown vehicle model", map[string]any{"model_type": name})
	}
	return f(params, gravity, airDensity)
}
