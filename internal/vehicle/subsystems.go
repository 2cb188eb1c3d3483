package vehicle

import "github.com/fsae-sim/laptimesim/internal/raceerr"

// AeroModel computes aerodynamic downforce and drag at a given velocity.
type AeroModel interface {
	Downforce(velocity, airDensity float64) float64
	Drag(velocity, airDensity float64) float64
}

// SuspensionModel computes the per-corner geometric attitude contribution
// (camber, slip angle) a given axle delivers. The point-mass model ignores
// roll and weight transfer, so these only ever modulate Camber/SlipAngle,
// never NormalLoad.
type SuspensionModel interface {
	Attitude(lateralAcceleration float64) (camber, slipAngle float64)
}

// TyreModel computes available per-corner traction. Any argument outside
// the tyre's validity envelope (e.g. a demanded force exceeding the
// friction circle) is reported as InvalidAttitude; callers must recover
// this locally — see PointMass.Resolve.
type TyreModel interface {
	CalculateLateralForce(a Attitude, requiredFx float64) (float64, error)
	CalculateLongitudinalForce(a Attitude, requiredFy float64) (float64, error)
}

// PowertrainModel computes the motor operating point from velocity and
// accumulator state of charge.
type PowertrainModel interface {
	VelocityToMotorSpeed(velocity float64) float64
	MotorTorque(soc, motorSpeed float64) float64
	MotorPower(soc, motorSpeed float64) float64
	// MaxVelocity is the motor's own speed cap (vehicle_maximum_velocity),
	// independent of traction availability.
	MaxVelocity() float64
	// UpdateSOC advances state of charge given cumulative energy drawn
	// since the last update. Monotonically decreasing in energyUsed.
	UpdateSOC(soc, energyUsed float64) float64
}

// The registries below follow the same shape: a factory keyed by the
// subsystem's discriminator string ("model_type" / "suspension_type" /
// "tyre_model" / ...), populated by each concrete type's init() and never
// mutated again at runtime.

type aeroFactory func(params map[string]float64) (AeroModel, error)
type suspensionFactory func(params map[string]float64) (SuspensionModel, error)
type tyreFactory func(params map[string]float64) (TyreModel, error)
type powertrainFactory func(params map[string]float64) (PowertrainModel, error)

var (
	aeroRegistry        = map[string]aeroFactory{}
	suspensionRegistry  = map[string]suspensionFactory{}
	tyreRegistry        = map[string]tyreFactory{}
	powertrainRegistry  = map[string]powertrainFactory{}
)

// RegisterAeroModel registers a factory for the aero model tagged name.
// Intended to be called from a concrete type's init().
func RegisterAeroModel(name string, f aeroFactory) { aeroRegistry[name] = f }

// RegisterSuspensionModel registers a factory for the suspension model
// tagged name.
func RegisterSuspensionModel(name string, f suspensionFactory) { suspensionRegistry[name] = f }

// RegisterTyreModel registers a factory for the tyre model tagged name.
func RegisterTyreModel(name string, f tyreFactory) { tyreRegistry[name] = f }

// RegisterPowertrainModel registers a factory for the powertrain model
// tagged name.
func RegisterPowertrainModel(name string, f powertrainFactory) { powertrainRegistry[name] = f }

// NewAeroModel looks up and constructs a registered aero model.
func NewAeroModel(name string, params map[string]float64) (AeroModel, error) {
	f, ok := aeroRegistry[name]
	if !ok {
		return nil, raceerr.VehicleConfig("unknown aero model", map[string]any{"model_type": name})
	}
	return f(params)
}

// NewSuspensionModel looks up and constructs a registered suspension model.
func NewSuspensionModel(name string, params map[string]float64) (SuspensionModel, error) {
	f, ok := suspensionRegistry[name]
	if !ok {
		return nil, raceerr.VehicleConfig("unknown suspension model", map[string]any{"suspension_type": name})
	}
	return f(params)
}

// NewTyreModel looks up and constructs a registered tyre model.
func NewTyreModel(name string, params map[string]float64) (TyreModel, error) {
	f, ok := tyreRegistry[name]
	if !ok {
		return nil, raceerr.VehicleConfig("unknown tyre model", map[string]any{"tyre_model": name})
	}
	return f(params)
}

// NewPowertrainModel looks up and constructs a registered powertrain model.
func NewPowertrainModel(name string, params map[string]float64) (PowertrainModel, error) {
	f, ok := powertrainRegistry[name]
	if !ok {
		return nil, raceerr.VehicleConfig("unknown powertrain model", map[string]any{"powertrain_model": name})
	}
	return f(params)
}
