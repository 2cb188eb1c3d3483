package vehicle

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// ConstantMuTyre is a friction-circle tyre model with a single constant
// coefficient: available combined force at a corner never exceeds
// mu * NormalLoad, split between the lateral and longitudinal directions by
// Pythagorean combination. It ignores Camber and SlipAngle — the simplest
// tyre model the capability set in the vehicle-model interface admits, and
// the only concrete tyre this package ships; a Magic-Formula tyre model
// consuming .tir parameter files is an external collaborator's concern.
type ConstantMuTyre struct {
	mu float64
}

func init() {
	RegisterTyreModel("constant", newConstantMuTyre)
}

func newConstantMuTyre(params map[string]float64) (TyreModel, error) {
	mu, ok := params["mu"]
	if !ok || mu <= 0 {
		return nil, raceerr.VehicleConfig("constant tyre requires positive mu", map[string]any{"mu": mu})
	}
	return &ConstantMuTyre{mu: mu}, nil
}

func (t *ConstantMuTyre) circleRadius(a Attitude) float64 {
	return t.mu * a.NormalLoad
}

// CalculateLateralForce returns the lateral force still available once
// requiredFx has already been committed at this corner.
func (t *ConstantMuTyre) CalculateLateralForce(a Attitude, requiredFx float64) (float64, error) {
	r := t.circleRadius(a)
	remaining := r*r - requiredFx*requiredFx
	if remaining < 0 {
		return 0, raceerr.Attitude("longitudinal demand exceeds friction circle", map[string]any{
			"required_fx": requiredFx, "limit": r,
		})
	}
	return math.Sqrt(remaining), nil
}

// CalculateLongitudinalForce returns the longitudinal force still available
// once requiredFy has already been committed at this corner.
func (t *ConstantMuTyre) CalculateLongitudinalForce(a Attitude, requiredFy float64) (float64, error) {
	r := t.circleRadius(a)
	remaining := r*r - requiredFy*requiredFy
	if remaining < 0 {
		return 0, raceerr.Attitude("lateral demand exceeds friction circle", map[string]any{
			"required_fy": requiredFy, "limit": r,
		})
	}
	return math.Sqrt(remaining), nil
}
