package vehicle

import "github.com/fsae-sim/laptimesim/internal/raceerr"

// simpleAero implements the constant-coefficient aero model: downforce and
// drag both scale with the square of velocity and dynamic pressure,
// ½·C·A·ρ·v².
type simpleAero struct {
	frontalArea float64
	liftCoeff   float64
	dragCoeff   float64
}

func init() {
	RegisterAeroModel("constant", newSimpleAero)
}

func newSimpleAero(params map[string]float64) (AeroModel, error) {
	area, ok := params["frontal_area"]
	if !ok || area <= 0 {
		return nil, raceerr.VehicleConfig("aero requires positive frontal_area", map[string]any{"frontal_area": area})
	}
	return &simpleAero{
		frontalArea: area,
		liftCoeff:   params["lift_coefficient"],
		dragCoeff:   params["drag_coefficient"],
	}, nil
}

func (a *simpleAero) Downforce(velocity, airDensity float64) float64 {
	return 0.5 * a.liftCoeff * a.frontalArea * airDensity * velocity * velocity
}

func (a *simpleAero) Drag(velocity, airDensity float64) float64 {
	return 0.5 * a.dragCoeff * a.frontalArea * airDensity * velocity * velocity
}
