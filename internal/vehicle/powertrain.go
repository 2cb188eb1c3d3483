package vehicle

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// simplePowertrain is a torque-speed-limited motor model: flat maximum
// torque up to a base speed, power-limited above it, with a state-of-charge
// derating below a depletion threshold.
type simplePowertrain struct {
	finalDriveRatio float64
	wheelRadius     float64
	maxTorque       float64
	maxPower        float64
	maxMotorSpeed       float64
	maxVelocity         float64
	socDerateBelow      float64
	accumulatorCapacity float64
}

func init() {
	RegisterPowertrainModel("simple", newSimplePowertrain)
}

func newSimplePowertrain(params map[string]float64) (PowertrainModel, error) {
	required := []string{"final_drive_ratio", "wheel_radius", "max_torque", "max_power", "max_motor_speed", "max_velocity"}
	for _, key := range required {
		if _, ok := params[key]; !ok {
			return nil, raceerr.VehicleConfig("simple powertrain missing parameter", map[string]any{"parameter": key})
		}
	}
	capacity := params["accumulator_capacity"]
	if capacity <= 0 {
		// No accumulator-capacity parameter supplied: treat the pack as
		// effectively uncapped so SOC stays at 1 for events that don't
		// model energy depletion.
		capacity = math.MaxFloat64
	}

	return &simplePowertrain{
		finalDriveRatio:     params["final_drive_ratio"],
		wheelRadius:         params["wheel_radius"],
		maxTorque:           params["max_torque"],
		maxPower:            params["max_power"],
		maxMotorSpeed:       params["max_motor_speed"],
		maxVelocity:         params["max_velocity"],
		socDerateBelow:      params["soc_derate_below"],
		accumulatorCapacity: capacity,
	}, nil
}

// UpdateSOC advances state of charge by the energy drawn since the last
// update, as a fraction of the accumulator's total capacity.
func (p *simplePowertrain) UpdateSOC(soc, energyUsed float64) float64 {
	next := soc - energyUsed/p.accumulatorCapacity
	if next < 0 {
		return 0
	}
	if next > soc {
		return soc
	}
	return next
}

func (p *simplePowertrain) VelocityToMotorSpeed(velocity float64) float64 {
	if p.wheelRadius <= 0 {
		return 0
	}
	return velocity / p.wheelRadius * p.finalDriveRatio
}

func (p *simplePowertrain) MaxVelocity() float64 { return p.maxVelocity }

// availableTorque applies the flat-torque / power-limited envelope, capped
// at the motor's top speed.
func (p *simplePowertrain) availableTorque(motorSpeed float64) float64 {
	if motorSpeed <= 0 {
		return p.maxTorque
	}
	if motorSpeed > p.maxMotorSpeed {
		return 0
	}
	powerLimited := p.maxPower / motorSpeed
	return math.Min(p.maxTorque, powerLimited)
}

func (p *simplePowertrain) derate(soc float64) float64 {
	if p.socDerateBelow <= 0 || soc >= p.socDerateBelow {
		return 1.0
	}
	if soc <= 0 {
		return 0
	}
	return soc / p.socDerateBelow
}

func (p *simplePowertrain) MotorTorque(soc, motorSpeed float64) float64 {
	return p.availableTorque(motorSpeed) * p.derate(soc)
}

func (p *simplePowertrain) MotorPower(soc, motorSpeed float64) float64 {
	return p.MotorTorque(soc, motorSpeed) * motorSpeed
}
