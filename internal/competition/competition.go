// Package competition runs the four fixed Formula-Student events against a
// single vehicle and solver configuration, in parallel, and aggregates
// their solutions into one CompetitionResults record.
package competition

import (
	"context"

	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
	"golang.org/x/sync/errgroup"
)

// Tracks bundles the three track-library meshes a Competition needs.
// Endurance is derived from Autocross via mesh.Endurance, not supplied.
type Tracks struct {
	Acceleration *mesh.TrackMesh
	Skidpad      *mesh.TrackMesh
	Autocross    *mesh.TrackMesh
}

// CompetitionResults holds the four event solutions.
type CompetitionResults struct {
	Acceleration *solution.Solution
	Skidpad      *solution.Solution
	Autocross    *solution.Solution
	Endurance    *solution.Solution
}

// Solve runs one event's solver given a vehicle model and mesh; it is
// supplied by the caller (solver.RunQSS or solver.RunTransient) so this
// package stays agnostic to which solver mode is configured.
type Solve func(model vehicle.Model, trackMesh *mesh.TrackMesh) (*solution.Solution, error)

// Run executes the four events concurrently via errgroup and aggregates
// their solutions. EnduranceMinLength is the minimum total endurance-mesh
// length (metres); the autocross mesh is looped via mesh.Endurance to meet
// it.
func Run(ctx context.Context, model vehicle.Model, tracks Tracks, enduranceMinLength float64, solve Solve) (*CompetitionResults, error) {
	g, _ := errgroup.WithContext(ctx)
	results := &CompetitionResults{}

	g.Go(func() error {
		sol, err := solve(model, tracks.Acceleration)
		if err != nil {
			return err
		}
		results.Acceleration = sol
		return nil
	})
	g.Go(func() error {
		sol, err := solve(model, tracks.Skidpad)
		if err != nil {
			return err
		}
		results.Skidpad = sol
		return nil
	})
	g.Go(func() error {
		sol, err := solve(model, tracks.Autocross)
		if err != nil {
			return err
		}
		results.Autocross = sol
		return nil
	})
	g.Go(func() error {
		enduranceMesh := mesh.Endurance(tracks.Autocross, enduranceMinLength)
		sol, err := solve(model, enduranceMesh)
		if err != nil {
			return err
		}
		results.Endurance = sol
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SkidpadTime halves the raw skidpad-mesh lap time: the rulebook scores the
// average of two timed laps around a figure-eight, which this single-loop
// mesh approximates as one full lap taking twice as long as the scored time.
func SkidpadTime(sol *solution.Solution) float64 {
	return sol.TotalTime() / 2
}
