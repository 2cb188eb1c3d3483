package competition

import (
	"context"
	"testing"

	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/solver"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

type constantModel struct{ maxVelocity, accel, decel float64 }

func (m *constantModel) Resolve(state vehicle.StateVariables, node mesh.TrackNode, v float64) (vehicle.FullVehicleState, error) {
	return vehicle.FullVehicleState{Velocity: v}, nil
}
func (m *constantModel) LateralVelocityLimit(state vehicle.StateVariables, node mesh.TrackNode) (float64, error) {
	return m.maxVelocity, nil
}
func (m *constantModel) AccelerationAt(state vehicle.StateVariables, node mesh.TrackNode, v float64) (float64, error) {
	return m.accel, nil
}
func (m *constantModel) DecelerationAt(state vehicle.StateVariables, node mesh.TrackNode, v float64) (float64, error) {
	return m.decel, nil
}
func (m *constantModel) UpdateSOC(soc, energyUsed float64) float64 { return soc }

func testTracks() Tracks {
	return Tracks{
		Acceleration: StraightTrack(75, 5),
		Skidpad:      SkidpadTrack(9.125, 2),
		Autocross:    StraightTrack(1000, 10),
	}
}

func qssSolve(model vehicle.Model, tm *mesh.TrackMesh) (*solution.Solution, error) {
	return solver.RunQSS(model, tm, nil)
}

func TestRunExecutesAllFourEvents(t *testing.T) {
	model := &constantModel{maxVelocity: 30, accel: 5, decel: 5}
	results, err := Run(context.Background(), model, testTracks(), 22000, qssSolve)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results.Acceleration == nil || results.Skidpad == nil || results.Autocross == nil || results.Endurance == nil {
		t.Fatal("Run left a nil event solution")
	}
}

// S4 — endurance length: base mesh total length 3000m -> ceil(22000/L)=8
// repeats, total length 24000m.
func TestEnduranceLengthMatchesSeedScenario(t *testing.T) {
	model := &constantModel{maxVelocity: 30, accel: 5, decel: 5}
	tracks := Tracks{
		Acceleration: StraightTrack(75, 5),
		Skidpad:      SkidpadTrack(9.125, 2),
		Autocross:    StraightTrack(3000, 10),
	}
	results, err := Run(context.Background(), model, tracks, 22000, qssSolve)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := results.Endurance.TotalLength()
	if got != 24000 {
		t.Errorf("endurance total length = %f, want 24000", got)
	}
}

func TestSkidpadTimeIsHalfOfRawLapTime(t *testing.T) {
	model := &constantModel{maxVelocity: 30, accel: 5, decel: 5}
	sol, err := solver.RunQSS(model, SkidpadTrack(9.125, 2), nil)
	if err != nil {
		t.Fatalf("RunQSS: %v", err)
	}
	if SkidpadTime(sol) != sol.TotalTime()/2 {
		t.Error("SkidpadTime should halve the raw lap time")
	}
}

func TestPointsIsMonotonicallyDecreasingWithTime(t *testing.T) {
	fast := &constantModel{maxVelocity: 30, accel: 10, decel: 10}
	slow := &constantModel{maxVelocity: 30, accel: 2, decel: 2}

	fastResults, err := Run(context.Background(), fast, testTracks(), 22000, qssSolve)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	slowResults, err := Run(context.Background(), slow, testTracks(), 22000, qssSolve)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if Points(fastResults) <= Points(slowResults) {
		t.Errorf("faster vehicle should score higher: fast=%f slow=%f", Points(fastResults), Points(slowResults))
	}
}
