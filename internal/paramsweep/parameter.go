// Package paramsweep mutates a Vehicle along a named parameter and re-runs
// downstream evaluation: single-parameter sweeps, nested coupling sweeps,
// and central-difference sensitivity against an externally supplied
// points-scoring function (internal/competition owns what "points" means,
// so this package takes it as a callback rather than importing it).
package paramsweep

import (
	"github.com/fsae-sim/laptimesim/internal/raceerr"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// Getter reads a Parameter's current value off a VehicleParams.
type Getter func(vehicle.VehicleParams) float64

// Setter writes a Parameter's value onto a VehicleParams in place.
type Setter func(*vehicle.VehicleParams, float64)

// Parameter is a (name, unit, getter, setter) 4-tuple over a Vehicle,
// registered by name for lookup from sweep/coupling/sensitivity requests.
type Parameter struct {
	Name string
	Unit string
	Get  Getter
	Set  Setter
}

var registry = map[string]Parameter{}

// Register adds a parameter to the process-wide registry.
func Register(p Parameter) { registry[p.Name] = p }

// Get looks up a parameter by name.
func Get(name string) (Parameter, error) {
	p, ok := registry[name]
	if !ok {
		return Parameter{}, raceerr.Parameter(name)
	}
	return p, nil
}

func init() {
	Register(Parameter{
		Name: "Curb Mass",
		Unit: "kg",
		Get:  func(p vehicle.VehicleParams) float64 { return p.CurbMass },
		Set:  func(p *vehicle.VehicleParams, v float64) { p.CurbMass = v },
	})
	Register(Parameter{
		Name: "Final Drive Ratio",
		Unit: "-",
		Get:  func(p vehicle.VehicleParams) float64 { return p.FinalDriveRatio },
		Set:  func(p *vehicle.VehicleParams, v float64) { p.FinalDriveRatio = v },
	})
	Register(Parameter{
		Name: "Lift Coefficient",
		Unit: "-",
		Get:  func(p vehicle.VehicleParams) float64 { return p.Aero.Params["lift_coefficient"] },
		Set: func(p *vehicle.VehicleParams, v float64) {
			p.Aero.Params["lift_coefficient"] = v
		},
	})
	Register(Parameter{
		Name: "Drag Coefficient",
		Unit: "-",
		Get:  func(p vehicle.VehicleParams) float64 { return p.Aero.Params["drag_coefficient"] },
		Set: func(p *vehicle.VehicleParams, v float64) {
			p.Aero.Params["drag_coefficient"] = v
		},
	})
}
