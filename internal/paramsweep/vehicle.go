package paramsweep

import "github.com/fsae-sim/laptimesim/internal/vehicle"

// cloneParams deep-clones a VehicleParams so mutating the copy never aliases
// the caller's subsystem Params maps.
func cloneParams(base vehicle.VehicleParams) vehicle.VehicleParams {
	clone := base
	clone.Aero.Params = cloneMap(base.Aero.Params)
	clone.SuspensionFront.Params = cloneMap(base.SuspensionFront.Params)
	clone.SuspensionRear.Params = cloneMap(base.SuspensionRear.Params)
	clone.TyreFront.Params = cloneMap(base.TyreFront.Params)
	clone.TyreRear.Params = cloneMap(base.TyreRear.Params)
	clone.Powertrain.Params = cloneMap(base.Powertrain.Params)
	return clone
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NewVehicle deep-clones base and invokes the named parameter's setter with
// value, leaving base untouched.
func NewVehicle(base vehicle.VehicleParams, parameterName string, value float64) (vehicle.VehicleParams, error) {
	p, err := Get(parameterName)
	if err != nil {
		return vehicle.VehicleParams{}, err
	}
	clone := cloneParams(base)
	p.Set(&clone, value)
	return clone, nil
}
