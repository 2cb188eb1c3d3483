// Package solver implements the quasi-steady-state velocity-profile solver
// and the quasi-transient outer loop that feeds state-of-charge back into it.
package solver

import (
	"math"
	"sort"

	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// RunQSS runs the six strictly-ordered QSS phases over a freshly
// constructed Solution, using the per-node states supplied (one per track
// node; states[i] feeds every call against node i). If states is nil,
// every node starts from vehicle.DefaultStateVariables().
func RunQSS(model vehicle.Model, trackMesh *mesh.TrackMesh, states []vehicle.StateVariables) (*solution.Solution, error) {
	sol := solution.New(trackMesh, model)
	n := len(sol.Nodes)
	if n == 0 {
		return sol, nil
	}
	if states == nil {
		states = make([]vehicle.StateVariables, n)
		for i := range states {
			states[i] = vehicle.DefaultStateVariables()
		}
	}

	if err := phase1Envelope(sol, states); err != nil {
		return nil, err
	}
	worklist := phase2IdentifyApexes(sol)
	phase3ForwardPropagate(sol, states, worklist)
	phase4BackwardPropagate(sol, states, worklist)
	if err := phase5ResolveState(sol, states); err != nil {
		return nil, err
	}
	phase6RecomputeSOC(sol)

	return sol, nil
}

// phase1Envelope computes the maximum-velocity envelope.
func phase1Envelope(sol *solution.Solution, states []vehicle.StateVariables) error {
	for i := range sol.Nodes {
		v, err := sol.Vehicle.LateralVelocityLimit(states[i], sol.Nodes[i].Node)
		if err != nil {
			return err
		}
		sol.Nodes[i].MaxVelocity = v
	}
	return nil
}

// phase2IdentifyApexes marks strict local minima of max_velocity (plus the
// first and last index) as apexes, and returns the worklist of their
// indices sorted ascending by max_velocity, ties broken by index.
func phase2IdentifyApexes(sol *solution.Solution) []int {
	n := len(sol.Nodes)
	apexSet := map[int]bool{0: true, n - 1: true}
	for i := 1; i < n-1; i++ {
		mv := sol.Nodes[i].MaxVelocity
		if mv < sol.Nodes[i-1].MaxVelocity && mv < sol.Nodes[i+1].MaxVelocity {
			apexSet[i] = true
		}
	}

	worklist := make([]int, 0, len(apexSet))
	for i := range apexSet {
		sol.Nodes[i].Apex = true
		worklist = append(worklist, i)
	}
	sort.Slice(worklist, func(a, b int) bool {
		ia, ib := worklist[a], worklist[b]
		if sol.Nodes[ia].MaxVelocity != sol.Nodes[ib].MaxVelocity {
			return sol.Nodes[ia].MaxVelocity < sol.Nodes[ib].MaxVelocity
		}
		return ia < ib
	})
	return worklist
}

// phase3ForwardPropagate walks forward from each still-flagged apex, in
// worklist order.
func phase3ForwardPropagate(sol *solution.Solution, states []vehicle.StateVariables, worklist []int) {
	nodes := sol.Nodes
	last := len(nodes) - 1

	for _, a := range worklist {
		if !nodes[a].Apex {
			continue
		}
		nodes[a].SetInitialVelocity(nodes[a].MaxVelocity)

		for i := a; ; i++ {
			vInit := nodes[i].InitialVelocity
			vTrac := vInit

			ax, err := sol.Vehicle.AccelerationAt(states[i], nodes[i].Node, vInit)
			if err == nil {
				radicand := vInit*vInit + 2*ax*nodes[i].Node.Length
				if radicand >= 0 {
					vTrac = math.Sqrt(radicand)
				}
			}

			vFinal := math.Min(vTrac, nodes[i].MaxVelocity)
			nodes[i].SetFinalVelocity(vFinal)

			if i == last {
				break
			}

			nodes[i+1].SetInitialVelocity(vFinal)

			if nodes[i+1].Apex {
				if vFinal < nodes[i+1].MaxVelocity {
					nodes[i+1].Apex = false
				} else {
					break
				}
			}
		}
	}
}

// phase4BackwardPropagate walks backward from each still-flagged apex, in
// the same worklist order.
func phase4BackwardPropagate(sol *solution.Solution, states []vehicle.StateVariables, worklist []int) {
	nodes := sol.Nodes

	for _, a := range worklist {
		if !nodes[a].Apex {
			continue
		}

		for i := a; i > 0; {
			oldPrevFinal := nodes[i-1].FinalVelocity
			if oldPrevFinal <= nodes[i].FinalVelocity {
				break
			}

			vPrev := nodes[i].FinalVelocity
			dec, err := sol.Vehicle.DecelerationAt(states[i], nodes[i].Node, nodes[i].FinalVelocity)
			if err == nil {
				radicand := nodes[i].FinalVelocity*nodes[i].FinalVelocity + 2*dec*nodes[i].Node.Length
				if radicand > 0 {
					vPrev = math.Sqrt(radicand)
				} else {
					vPrev = 0
				}
			}

			vNew := math.Min(vPrev, oldPrevFinal)
			nodes[i].SetInitialVelocity(vNew)
			nodes[i-1].SetFinalVelocity(vNew)

			if !nodes[i-1].Apex {
				i--
				continue
			}
			if vNew < oldPrevFinal {
				nodes[i-1].Apex = false
				i--
				continue
			}
			break
		}
	}
}

// phase5ResolveState calls resolve at avg_velocity for every node.
func phase5ResolveState(sol *solution.Solution, states []vehicle.StateVariables) error {
	for i := range sol.Nodes {
		full, err := sol.Vehicle.Resolve(states[i], sol.Nodes[i].Node, sol.Nodes[i].AvgVelocity())
		if err != nil {
			return err
		}
		sol.Nodes[i].State = full
	}
	return nil
}

// phase6RecomputeSOC advances state of charge monotonically across nodes,
// for the outer loop to feed back into the next iteration's states.
func phase6RecomputeSOC(sol *solution.Solution) {
	n := len(sol.Nodes)
	if n == 0 {
		return
	}
	soc := make([]float64, n)
	soc[0] = 1.0
	for i := 1; i < n; i++ {
		soc[i] = sol.Vehicle.UpdateSOC(soc[i-1], sol.Nodes[i-1].EnergyUsed())
	}
	sol.SOCProfile = soc
}
