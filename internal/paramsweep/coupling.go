package paramsweep

import (
	"fmt"

	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// CouplingPoint is one sample of an outer sweep paired with the inner
// parameter's central-difference sensitivity at that outer value.
type CouplingPoint struct {
	OuterValue       float64
	InnerSensitivity float64
}

// Coupling sweeps the outer parameter over [start, end] (n samples); at
// each outer value it differentiates the inner parameter by central
// difference, producing {outer_value -> inner_sensitivity}.
func Coupling(base vehicle.VehicleParams, outerParameter string, start, end float64, n int, innerParameter string, points PointsFunc) ([]CouplingPoint, error) {
	outer, err := Get(outerParameter)
	if err != nil {
		return nil, err
	}
	if _, err := Get(innerParameter); err != nil {
		return nil, err
	}

	values := linspace(start, end, n)
	out := make([]CouplingPoint, len(values))
	for i, v := range values {
		outerClone := cloneParams(base)
		outer.Set(&outerClone, v)

		sensitivity, err := Sensitivity(outerClone, innerParameter, points)
		if err != nil {
			return nil, fmt.Errorf("paramsweep: coupling at %s=%f: %w", outerParameter, v, err)
		}
		out[i] = CouplingPoint{OuterValue: v, InnerSensitivity: sensitivity}
	}
	return out, nil
}
