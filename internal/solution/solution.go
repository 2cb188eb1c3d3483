// Package solution holds the solver's working record of a lap: one
// SolutionNode per TrackNode, with anchor-checked velocity setters and the
// derived per-node quantities the channels layer reads.
package solution

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// SolutionNode is the solver's working record for one TrackNode.
type SolutionNode struct {
	Node mesh.TrackNode

	MaxVelocity     float64
	InitialVelocity float64
	FinalVelocity   float64

	initialAnchored bool
	finalAnchored   bool

	Apex bool

	State vehicle.FullVehicleState
}

// SetInitialVelocity sets the initial velocity if not already anchored.
// Returns whether the value was applied.
func (n *SolutionNode) SetInitialVelocity(v float64) bool {
	if n.initialAnchored {
		return false
	}
	n.InitialVelocity = v
	return true
}

// AnchorInitialVelocity sets the initial velocity unconditionally and
// anchors it: no subsequent SetInitialVelocity call can move it.
func (n *SolutionNode) AnchorInitialVelocity(v float64) {
	n.InitialVelocity = v
	n.initialAnchored = true
}

// InitialAnchored reports whether the initial velocity is anchored.
func (n *SolutionNode) InitialAnchored() bool { return n.initialAnchored }

// SetFinalVelocity sets the final velocity if not already anchored.
// Returns whether the value was applied.
func (n *SolutionNode) SetFinalVelocity(v float64) bool {
	if n.finalAnchored {
		return false
	}
	n.FinalVelocity = v
	return true
}

// AnchorFinalVelocity sets the final velocity unconditionally and anchors it.
func (n *SolutionNode) AnchorFinalVelocity(v float64) {
	n.FinalVelocity = v
	n.finalAnchored = true
}

// FinalAnchored reports whether the final velocity is anchored.
func (n *SolutionNode) FinalAnchored() bool { return n.finalAnchored }

// AvgVelocity is (initial + final) / 2.
func (n *SolutionNode) AvgVelocity() float64 {
	return (n.InitialVelocity + n.FinalVelocity) / 2
}

// LongitudinalAcceleration is (final^2 - initial^2) / (2*length).
func (n *SolutionNode) LongitudinalAcceleration() float64 {
	if n.Node.Length == 0 {
		return 0
	}
	return (n.FinalVelocity*n.FinalVelocity - n.InitialVelocity*n.InitialVelocity) / (2 * n.Node.Length)
}

// LateralAcceleration is avg_velocity^2 * curvature.
func (n *SolutionNode) LateralAcceleration() float64 {
	avg := n.AvgVelocity()
	return avg * avg * n.Node.Curvature
}

// Time is length / avg_velocity. Undefined (returns +Inf) if avg_velocity
// is zero — callers aggregating total_time should treat that as a stalled
// lap, not silently skip the node.
func (n *SolutionNode) Time() float64 {
	avg := n.AvgVelocity()
	if avg == 0 {
		return math.Inf(1)
	}
	return n.Node.Length / avg
}

// EnergyUsed is accumulator_power * time.
func (n *SolutionNode) EnergyUsed() float64 {
	return n.State.AccumulatorPower * n.Time()
}

// ResultantAcceleration is hypot(longitudinal, lateral).
func (n *SolutionNode) ResultantAcceleration() float64 {
	return math.Hypot(n.LongitudinalAcceleration(), n.LateralAcceleration())
}

// Solution is an ordered sequence of SolutionNode plus a reference to the
// vehicle model that produced it.
type Solution struct {
	Nodes   []SolutionNode
	Vehicle vehicle.Model

	// SOCProfile holds the state-of-charge recomputed at the end of a QSS
	// pass (Phase 6), one entry per node, to feed the next outer-loop
	// iteration's per-node StateVariables. Nil until a QSS pass completes.
	SOCProfile []float64
}

// New constructs a fresh Solution from a mesh: one SolutionNode per
// TrackNode, all velocities zero, no apexes, node 0's initial velocity
// permanently anchored at 0.
func New(trackMesh *mesh.TrackMesh, model vehicle.Model) *Solution {
	nodes := make([]SolutionNode, len(trackMesh.Nodes))
	for i, tn := range trackMesh.Nodes {
		nodes[i] = SolutionNode{Node: tn}
	}
	if len(nodes) > 0 {
		nodes[0].AnchorInitialVelocity(0)
	}
	return &Solution{Nodes: nodes, Vehicle: model}
}

// TotalTime sums per-node Time().
func (s *Solution) TotalTime() float64 {
	total := 0.0
	for i := range s.Nodes {
		total += s.Nodes[i].Time()
	}
	return total
}

// TotalLength sums node lengths.
func (s *Solution) TotalLength() float64 {
	total := 0.0
	for i := range s.Nodes {
		total += s.Nodes[i].Node.Length
	}
	return total
}

// AverageVelocity is total_length / total_time.
func (s *Solution) AverageVelocity() float64 {
	t := s.TotalTime()
	if t == 0 {
		return 0
	}
	return s.TotalLength() / t
}
