package competition

import "github.com/fsae-sim/laptimesim/internal/mesh"

// StraightTrack builds a fixed-length, flat, zero-curvature mesh — the
// acceleration event's track-library entry.
func StraightTrack(length, resolution float64) *mesh.TrackMesh {
	n := int(length/resolution + 0.5)
	if n < 1 {
		n = 1
	}
	segment := length / float64(n)

	nodes := make([]mesh.TrackNode, n)
	pos := 0.0
	for i := range nodes {
		nodes[i] = mesh.TrackNode{Position: pos, Length: segment, GripFactor: 1}
		pos += segment
	}
	return &mesh.TrackMesh{Nodes: nodes, Configuration: mesh.Open, Name: "acceleration"}
}

// SkidpadTrack builds a fixed-radius, constant-curvature closed-loop mesh —
// the skidpad event's track-library entry. Lap time on this mesh is halved
// by SkidpadTime to match the rulebook's figure-eight-minus-entry scoring.
func SkidpadTrack(radius, resolution float64) *mesh.TrackMesh {
	circumference := 2 * 3.141592653589793 * radius
	n := int(circumference/resolution + 0.5)
	if n < 1 {
		n = 1
	}
	segment := circumference / float64(n)
	curvature := 1.0 / radius

	nodes := make([]mesh.TrackNode, n)
	pos := 0.0
	for i := range nodes {
		nodes[i] = mesh.TrackNode{Position: pos, Length: segment, Curvature: curvature, GripFactor: 1}
		pos += segment
	}
	return &mesh.TrackMesh{Nodes: nodes, Configuration: mesh.Closed, Name: "skidpad"}
}
