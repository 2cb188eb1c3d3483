package paramsweep

import (
	"fmt"

	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// sensitivityFraction is the relative perturbation applied on either side
// of the baseline value, delta = sensitivityFraction * baseline_value.
const sensitivityFraction = 1e-4

// Sensitivity computes the central finite difference of points with
// respect to the named parameter at base's current value:
// S = (points(baseline+delta) - points(baseline-delta)) / (2*delta).
func Sensitivity(base vehicle.VehicleParams, parameterName string, points PointsFunc) (float64, error) {
	param, err := Get(parameterName)
	if err != nil {
		return 0, err
	}

	baseline := param.Get(base)
	delta := sensitivityFraction * baseline
	if delta == 0 {
		// A zero baseline has no scale to perturb relative to; fall back to
		// an absolute step so the difference quotient stays well-defined.
		delta = sensitivityFraction
	}

	plus := cloneParams(base)
	param.Set(&plus, baseline+delta)
	plusScore, err := points(plus)
	if err != nil {
		return 0, fmt.Errorf("paramsweep: evaluating %s=%f: %w", parameterName, baseline+delta, err)
	}

	minus := cloneParams(base)
	param.Set(&minus, baseline-delta)
	minusScore, err := points(minus)
	if err != nil {
		return 0, fmt.Errorf("paramsweep: evaluating %s=%f: %w", parameterName, baseline-delta, err)
	}

	return (plusScore - minusScore) / (2 * delta), nil
}
