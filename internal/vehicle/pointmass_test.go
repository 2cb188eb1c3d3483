package vehicle

import (
	"math"
	"testing"

	"github.com/fsae-sim/laptimesim/internal/mesh"
)

func testVehicleParams() VehicleParams {
	return VehicleParams{
		CurbMass:             250,
		EquivalentMassFactor: 1.05,
		FinalDriveRatio:      3.5,
		TyreRadius:           0.23,
		Aero: SubsystemConfig{Type: "constant", Params: map[string]float64{
			"frontal_area": 1.0, "lift_coefficient": 2.5, "drag_coefficient": 1.2,
		}},
		SuspensionFront: SubsystemConfig{Type: "decoupled", Params: nil},
		SuspensionRear:  SubsystemConfig{Type: "decoupled", Params: nil},
		TyreFront:       SubsystemConfig{Type: "constant", Params: map[string]float64{"mu": 1.6}},
		TyreRear:        SubsystemConfig{Type: "constant", Params: map[string]float64{"mu": 1.6}},
		Powertrain: SubsystemConfig{Type: "simple", Params: map[string]float64{
			"final_drive_ratio": 3.5,
			"wheel_radius":      0.23,
			"max_torque":        21,
			"max_power":         45000,
			"max_motor_speed":   1200,
			"max_velocity":      33,
		}},
	}
}

func testModel(t *testing.T) Model {
	t.Helper()
	m, err := NewModel("point_mass", testVehicleParams(), 9.81, 1.225)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func straightNode() mesh.TrackNode {
	return mesh.TrackNode{Position: 0, Length: 10, Curvature: 0, GripFactor: 1}
}

func corneringNode(curvature float64) mesh.TrackNode {
	return mesh.TrackNode{Position: 0, Length: 10, Curvature: curvature, GripFactor: 1}
}

func TestLateralVelocityLimitOnStraightReturnsMaxVelocity(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	v, err := m.LateralVelocityLimit(state, straightNode())
	if err != nil {
		t.Fatalf("LateralVelocityLimit: %v", err)
	}
	if v != 33 {
		t.Errorf("LateralVelocityLimit on straight = %f, want vehicle maximum velocity 33", v)
	}
}

func TestLateralVelocityLimitOnCornerIsBelowMax(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	v, err := m.LateralVelocityLimit(state, corneringNode(0.05))
	if err != nil {
		t.Fatalf("LateralVelocityLimit: %v", err)
	}
	if v <= 0 || v >= 33 {
		t.Errorf("cornering lateral limit = %f, want in (0, 33)", v)
	}
}

func TestLateralVelocityLimitNonNegative(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	v, err := m.LateralVelocityLimit(state, corneringNode(2.0))
	if err != nil {
		t.Fatalf("LateralVelocityLimit: %v", err)
	}
	if v < 0 {
		t.Errorf("LateralVelocityLimit = %f, want >= 0", v)
	}
}

func TestResolveTotalLateralTractionMatchesCornerSum(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	full, err := m.Resolve(state, corneringNode(0.02), 15)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	sum := 0.0
	for _, c := range full.Corners {
		sum += c.LateralTraction
	}
	if math.Abs(sum-full.TotalLateral) > 1e-9 {
		t.Errorf("corner lateral traction sum = %f, want %f", sum, full.TotalLateral)
	}
}

func TestAccelerationAtIsPositiveAtLowSpeed(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	ax, err := m.AccelerationAt(state, straightNode(), 5)
	if err != nil {
		t.Fatalf("AccelerationAt: %v", err)
	}
	if ax <= 0 {
		t.Errorf("AccelerationAt at low speed = %f, want > 0", ax)
	}
}

func TestDecelerationAtIsNonNegative(t *testing.T) {
	m := testModel(t)
	state := DefaultStateVariables()

	dec, err := m.DecelerationAt(state, straightNode(), 20)
	if err != nil {
		t.Fatalf("DecelerationAt: %v", err)
	}
	if dec < 0 {
		t.Errorf("DecelerationAt = %f, want >= 0", dec)
	}
}

func TestUnknownVehicleModelFails(t *testing.T) {
	_, err := NewModel("nonexistent", testVehicleParams(), 9.81, 1.225)
	if err == nil {
		t.Fatal("expected error for unknown vehicle model")
	}
}

func TestConstantMuTyreRejectsOverLimitDemand(t *testing.T) {
	tyre, err := newConstantMuTyre(map[string]float64{"mu": 1.5})
	if err != nil {
		t.Fatalf("newConstantMuTyre: %v", err)
	}
	attitude := Attitude{NormalLoad: 1000}
	_, err = tyre.CalculateLateralForce(attitude, 2000) // mu*Fz = 1500 < 2000
	if err == nil {
		t.Fatal("expected InvalidAttitude for over-limit demand")
	}
}
