package vehicle

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// SubsystemConfig is a tagged-variant configuration blob: Type selects the
// registered factory, Params is the flat numeric parameter set it consumes.
type SubsystemConfig struct {
	Type   string
	Params map[string]float64
}

// VehicleParams is the fully-resolved (component-library-dereferenced)
// configuration a ModelFactory consumes to build a concrete Model.
type VehicleParams struct {
	CurbMass             float64
	EquivalentMassFactor float64 // accounts for rotating driveline inertia; 1.0 if absent
	FinalDriveRatio      float64
	TyreRadius           float64

	Aero            SubsystemConfig
	SuspensionFront SubsystemConfig
	SuspensionRear  SubsystemConfig
	TyreFront       SubsystemConfig
	TyreRear        SubsystemConfig
	Powertrain      SubsystemConfig
}

// PointMass is the point-mass vehicle model: no weight transfer, per-corner
// normal load always normal_force/4, required_fx split between the two
// rear (driven) corners, required_fy split equally among all four.
type PointMass struct {
	mass            float64
	equivalentMass  float64
	finalDriveRatio float64
	tyreRadius      float64
	gravity         float64
	airDensity      float64

	aero            AeroModel
	suspensionFront SuspensionModel
	suspensionRear  SuspensionModel
	tyreFront       TyreModel
	tyreRear        TyreModel
	powertrain      PowertrainModel
}

func init() {
	RegisterVehicleModel("point_mass", newPointMass)
}

func newPointMass(p VehicleParams, gravity, airDensity float64) (Model, error) {
	if p.CurbMass <= 0 {
		return nil, raceerr.VehicleConfig("curb mass must be positive", map[string]any{"curb_mass": p.CurbMass})
	}
	if p.TyreRadius <= 0 {
		return nil, raceerr.VehicleConfig("tyre radius must be positive", map[string]any{"tyre_radius": p.TyreRadius})
	}

	aero, err := NewAeroModel(p.Aero.Type, p.Aero.Params)
	if err != nil {
		return nil, err
	}
	susF, err := NewSuspensionModel(p.SuspensionFront.Type, p.SuspensionFront.Params)
	if err != nil {
		return nil, err
	}
	susR, err := NewSuspensionModel(p.SuspensionRear.Type, p.SuspensionRear.Params)
	if err != nil {
		return nil, err
	}
	tyreF, err := NewTyreModel(p.TyreFront.Type, p.TyreFront.Params)
	if err != nil {
		return nil, err
	}
	tyreR, err := NewTyreModel(p.TyreRear.Type, p.TyreRear.Params)
	if err != nil {
		return nil, err
	}
	powertrain, err := NewPowertrainModel(p.Powertrain.Type, p.Powertrain.Params)
	if err != nil {
		return nil, err
	}

	equivalentMass := p.EquivalentMassFactor
	if equivalentMass <= 0 {
		equivalentMass = 1.0
	}
	equivalentMass *= p.CurbMass

	return &PointMass{
		mass:            p.CurbMass,
		equivalentMass:  equivalentMass,
		finalDriveRatio: p.FinalDriveRatio,
		tyreRadius:      p.TyreRadius,
		gravity:         gravity,
		airDensity:      airDensity,
		aero:            aero,
		suspensionFront: susF,
		suspensionRear:  susR,
		tyreFront:       tyreF,
		tyreRear:        tyreR,
		powertrain:      powertrain,
	}, nil
}

// weightBalance computes the weight and centripetal components shared by
// Resolve and LateralVelocityLimit.
func (m *PointMass) weightBalance(node mesh.TrackNode, v float64) (weight, weightAlongTrack, weightLateral, weightNormal, centripetalY, centripetalZ float64) {
	weight = m.mass * m.gravity
	weightAlongTrack = weight * math.Sin(node.Inclination)
	weightLateral = weight * math.Cos(node.Inclination) * math.Sin(node.Banking)
	weightNormal = weight * math.Cos(node.Inclination) * math.Cos(node.Banking)

	fc := m.mass * v * v * node.Curvature
	centripetalY = fc * math.Cos(node.Banking)
	centripetalZ = fc * math.Sin(node.Banking)
	return
}

// cornerTraction computes a single corner's traction, catching InvalidAttitude
// locally as the spec requires: an invalid demand means zero traction there.
func cornerTraction(tyre TyreModel, attitude Attitude, requiredFx, requiredFy float64) CornerState {
	lateral, err := tyre.CalculateLateralForce(attitude, requiredFx)
	if err != nil {
		lateral = 0
	}
	longitudinal, err := tyre.CalculateLongitudinalForce(attitude, requiredFy)
	if err != nil {
		longitudinal = 0
	}
	return CornerState{Attitude: attitude, LateralTraction: lateral, LongitudinalTraction: longitudinal}
}

// Resolve implements the force computation described in the vehicle-model
// interface: weight decomposition, centripetal demand, aero, per-corner
// traction and the motor operating point.
func (m *PointMass) Resolve(state StateVariables, node mesh.TrackNode, v float64) (FullVehicleState, error) {
	weight, weightAlongTrack, weightLateral, weightNormal, centripetalY, centripetalZ := m.weightBalance(node, v)

	downforce := m.aero.Downforce(v, m.airDensity)
	drag := m.aero.Drag(v, m.airDensity)

	resistiveFx := drag + weightAlongTrack
	requiredFy := centripetalY + weightLateral
	normalForce := weightNormal + centripetalZ + downforce
	perCornerNormal := normalForce / 4

	ay := v * v * node.Curvature
	camberF, slipF := m.suspensionFront.Attitude(ay)
	camberR, slipR := m.suspensionRear.Attitude(ay)

	frontAttitude := Attitude{NormalLoad: perCornerNormal, Camber: camberF, SlipAngle: slipF}
	rearAttitude := Attitude{NormalLoad: perCornerNormal, Camber: camberR, SlipAngle: slipR}

	rearFx := resistiveFx / 2
	fyPerCorner := requiredFy / 4

	var corners [numCorners]CornerState
	corners[CornerFrontLeft] = cornerTraction(m.tyreFront, frontAttitude, 0, fyPerCorner)
	corners[CornerFrontRight] = cornerTraction(m.tyreFront, frontAttitude, 0, fyPerCorner)
	corners[CornerRearLeft] = cornerTraction(m.tyreRear, rearAttitude, rearFx, fyPerCorner)
	corners[CornerRearRight] = cornerTraction(m.tyreRear, rearAttitude, rearFx, fyPerCorner)

	totalLateral, totalLongitudinal := 0.0, 0.0
	for _, c := range corners {
		totalLateral += c.LateralTraction
		totalLongitudinal += c.LongitudinalTraction
	}

	motorSpeed := m.powertrain.VelocityToMotorSpeed(v)
	motorTorque := m.powertrain.MotorTorque(state.StateOfCharge, motorSpeed)
	motorPower := m.powertrain.MotorPower(state.StateOfCharge, motorSpeed)
	driveForce := 0.0
	if m.tyreRadius > 0 {
		driveForce = motorTorque * m.finalDriveRatio / m.tyreRadius
	}

	return FullVehicleState{
		Velocity:          v,
		Weight:            weight,
		WeightAlongTrack:  weightAlongTrack,
		WeightLateral:     weightLateral,
		WeightNormal:      weightNormal,
		CentripetalForce:  m.mass * v * v * node.Curvature,
		CentripetalY:      centripetalY,
		CentripetalZ:      centripetalZ,
		Downforce:         downforce,
		Drag:              drag,
		ResistiveFx:       resistiveFx,
		RequiredFy:        requiredFy,
		NormalForce:       normalForce,
		PerCornerNormal:   perCornerNormal,
		Corners:           corners,
		TotalLateral:      totalLateral,
		TotalLongitudinal: totalLongitudinal,
		MotorSpeed:        motorSpeed,
		MotorTorque:       motorTorque,
		MotorPower:        motorPower,
		DriveForce:        driveForce,
		AccumulatorPower:  motorPower,
	}, nil
}

// LateralVelocityLimit finds the largest velocity sustainable with lateral
// traction alone via fixed-point iteration, per the vehicle-model interface.
func (m *PointMass) LateralVelocityLimit(state StateVariables, node mesh.TrackNode) (float64, error) {
	if node.Curvature == 0 {
		return m.powertrain.MaxVelocity(), nil
	}

	const margin = 0.001
	const maxIterations = 10000

	v := m.powertrain.MaxVelocity()
	absCurvature := math.Abs(node.Curvature)

	for i := 0; i < maxIterations; i++ {
		_, _, weightLateral, _, centripetalY, _ := m.weightBalance(node, v)
		requiredFy := centripetalY + weightLateral

		ay := v * v * node.Curvature
		camberF, slipF := m.suspensionFront.Attitude(ay)
		camberR, slipR := m.suspensionRear.Attitude(ay)
		_, _, _, weightNormal, _, centripetalZ := m.weightBalance(node, v)
		downforce := m.aero.Downforce(v, m.airDensity)
		normalForce := weightNormal + centripetalZ + downforce
		perCornerNormal := normalForce / 4

		frontAttitude := Attitude{NormalLoad: perCornerNormal, Camber: camberF, SlipAngle: slipF}
		rearAttitude := Attitude{NormalLoad: perCornerNormal, Camber: camberR, SlipAngle: slipR}

		availableFy := 0.0
		for _, c := range []CornerState{
			cornerTraction(m.tyreFront, frontAttitude, 0, 0),
			cornerTraction(m.tyreFront, frontAttitude, 0, 0),
			cornerTraction(m.tyreRear, rearAttitude, 0, 0),
			cornerTraction(m.tyreRear, rearAttitude, 0, 0),
		} {
			availableFy += c.LateralTraction
		}

		if availableFy >= math.Abs(requiredFy) {
			return v, nil
		}

		ayAvail := (availableFy - weightLateral) / m.mass
		if ayAvail < 0 {
			ayAvail = 0
		}
		v = math.Sqrt(ayAvail/absCurvature) - margin
		if v < 0 {
			v = 0
		}
	}
	return v, nil
}

// AccelerationAt returns net longitudinal acceleration while driving.
func (m *PointMass) AccelerationAt(state StateVariables, node mesh.TrackNode, v float64) (float64, error) {
	full, err := m.Resolve(state, node, v)
	if err != nil {
		return 0, err
	}
	rearTraction := full.Corners[CornerRearLeft].LongitudinalTraction + full.Corners[CornerRearRight].LongitudinalTraction
	fxDrive := math.Min(full.DriveForce, rearTraction)
	return (fxDrive - full.ResistiveFx) / m.equivalentMass, nil
}

// DecelerationAt returns the magnitude of maximum sustainable deceleration
// while braking.
func (m *PointMass) DecelerationAt(state StateVariables, node mesh.TrackNode, v float64) (float64, error) {
	full, err := m.Resolve(state, node, v)
	if err != nil {
		return 0, err
	}
	fxBrake := full.TotalLongitudinal
	return (fxBrake + full.ResistiveFx) / m.equivalentMass, nil
}

// UpdateSOC delegates to the powertrain's state-of-charge model.
func (m *PointMass) UpdateSOC(soc, energyUsed float64) float64 {
	return m.powertrain.UpdateSOC(soc, energyUsed)
}
