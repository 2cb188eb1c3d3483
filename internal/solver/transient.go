package solver

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/config"
	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/monitoring"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// RunTransient repeatedly runs QSS, feeding the recomputed state-of-charge
// profile back in each iteration, until total_time converges within
// settings.GetTransientTolerance() or settings.GetTransientMaxIterations()
// is reached. Hitting the iteration cap without converging is not an
// error: the last iterate is returned and an observation is logged.
func RunTransient(model vehicle.Model, trackMesh *mesh.TrackMesh, settings *config.SolverSettings) (*solution.Solution, error) {
	n := len(trackMesh.Nodes)
	states := make([]vehicle.StateVariables, n)
	for i := range states {
		states[i] = vehicle.StateVariables{StateOfCharge: 1.0}
	}

	maxIterations := settings.GetTransientMaxIterations()
	tolerance := settings.GetTransientTolerance()

	var sol *solution.Solution
	prevTime := math.Inf(1)

	for k := 0; k < maxIterations; k++ {
		var err error
		sol, err = RunQSS(model, trackMesh, states)
		if err != nil {
			return nil, err
		}

		currentTime := sol.TotalTime()
		if k > 0 && math.Abs(currentTime-prevTime) < tolerance {
			return sol, nil
		}
		prevTime = currentTime

		if sol.SOCProfile != nil {
			for i := range states {
				states[i].StateOfCharge = sol.SOCProfile[i]
			}
		}
	}

	monitoring.Warnf("quasi-transient loop hit iteration cap (%d) without converging; returning last iterate, total_time=%f", maxIterations, prevTime)
	return sol, nil
}
