// Package mesh discretises a track's shape, elevation, banking, grip and
// sector data into an ordered sequence of fixed-length TrackNodes — the
// geometry the solver walks node by node.
package mesh

import (
	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// Configuration distinguishes a point-to-point track from a closed loop.
// CLOSED tracks wrap curvature interpolation around the start/finish line;
// OPEN tracks do not.
type Configuration int

const (
	Open Configuration = iota
	Closed
)

func (c Configuration) String() string {
	if c == Closed {
		return "CLOSED"
	}
	return "OPEN"
}

// TrackNode is one discretised segment of the track. Created by Generate and
// immutable thereafter.
type TrackNode struct {
	// Position is the distance from the track start to the start of this
	// segment, metres.
	Position float64
	// Length is this segment's length, metres. Always positive.
	Length float64
	// Curvature is signed (left positive), zero on a straight.
	Curvature float64
	// Elevation, metres.
	Elevation float64
	// Inclination is the longitudinal slope angle, radians, in (-pi/2, pi/2).
	Inclination float64
	// Banking is the lateral road-surface tilt, radians, in [-pi/2, pi/2].
	Banking float64
	// GripFactor scales available tyre traction; always positive.
	GripFactor float64
	// Sector groups nodes for reporting (e.g. per-sector time splits).
	Sector int
}

// TrackMesh is an ordered, non-empty sequence of TrackNode.
type TrackMesh struct {
	Nodes         []TrackNode
	Configuration Configuration
	Name          string
}

// TotalLength sums node lengths — equal to the last node's Position+Length.
func (m *TrackMesh) TotalLength() float64 {
	if len(m.Nodes) == 0 {
		return 0
	}
	last := m.Nodes[len(m.Nodes)-1]
	return last.Position + last.Length
}

// Endurance derives an endurance mesh by replicating base's node sequence
// enough times to reach minLength, then re-numbering positions so they
// remain strictly increasing across lap boundaries. minLength is normally
// the FSAE endurance minimum (22 km); callers should pass the value from
// their SolverSettings rather than hard-coding it here.
func Endurance(base *TrackMesh, minLength float64) *TrackMesh {
	total := base.TotalLength()
	laps := 1
	if total > 0 {
		laps = int(minLength / total)
		if float64(laps)*total < minLength {
			laps++
		}
		if laps < 1 {
			laps = 1
		}
	}

	nodes := make([]TrackNode, 0, laps*len(base.Nodes))
	offset := 0.0
	for lap := 0; lap < laps; lap++ {
		for _, n := range base.Nodes {
			copied := n
			copied.Position = n.Position + offset
			nodes = append(nodes, copied)
		}
		offset += total
	}

	return &TrackMesh{
		Nodes:         nodes,
		Configuration: base.Configuration,
		Name:          base.Name + " (endurance)",
	}
}

// Validate checks the structural invariants Generate is expected to
// produce: monotonically increasing positions, positive lengths, and
// in-range banking/inclination.
func (m *TrackMesh) Validate() error {
	if len(m.Nodes) == 0 {
		return raceerr.TrackData("mesh has no nodes", nil)
	}
	expected := 0.0
	for i, n := range m.Nodes {
		if n.Length <= 0 {
			return raceerr.TrackData("non-positive node length", map[string]any{"index": i, "length": n.Length})
		}
		if n.GripFactor <= 0 {
			return raceerr.TrackData("non-positive grip factor", map[string]any{"index": i, "grip_factor": n.GripFactor})
		}
		const halfPi = 1.5707963267948966
		if n.Banking < -halfPi || n.Banking > halfPi {
			return raceerr.TrackData("banking out of range", map[string]any{"index": i, "banking": n.Banking})
		}
		if n.Inclination <= -halfPi || n.Inclination >= halfPi {
			return raceerr.TrackData("inclination out of range", map[string]any{"index": i, "inclination": n.Inclination})
		}
		if i > 0 && n.Position < expected-1e-9 {
			return raceerr.TrackData("node positions not increasing", map[string]any{"index": i})
		}
		expected = n.Position + n.Length
	}
	return nil
}
