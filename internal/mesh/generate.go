package mesh

import (
	"math"
	"sort"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// anchor is a position/value pair used for piecewise-linear interpolation.
type anchor struct {
	position float64
	value    float64
}

// Generate discretises data into a TrackMesh of approximately uniform node
// length resolution (metres). The returned mesh is immutable.
func Generate(data *TrackData, resolution float64) (*TrackMesh, error) {
	if len(data.Shape) == 0 {
		return nil, raceerr.TrackData("track has no shape segments", map[string]any{"track": data.Name})
	}
	if resolution <= 0 {
		return nil, raceerr.TrackData("resolution must be positive", map[string]any{"resolution": resolution})
	}

	total := 0.0
	for i, seg := range data.Shape {
		if seg.Length <= 0 {
			return nil, raceerr.TrackData("non-positive shape segment length", map[string]any{"index": i, "length": seg.Length})
		}
		total += seg.Length
	}

	n := int(math.Round(total / resolution))
	if n < 2 {
		n = 2
	}

	positions := make([]float64, n)
	for i := 0; i < n; i++ {
		positions[i] = float64(i) * total / float64(n-1)
	}

	lengths := diffAppend(positions, total)

	curvatureAnchors := curvatureAnchors(data.Shape, data.Configuration)
	elevationAnchors := sampleAnchors(data.Elevation)
	bankingAnchors := sampleAnchors(data.Banking)
	inclinationAnchors := slopeAnchors(elevationAnchors)

	gripBands := sortedBands(data.GripFactor)
	sectorBands := sortedBands(data.Sector)
	if len(gripBands) == 0 {
		return nil, raceerr.TrackData("track has no grip factor bands", map[string]any{"track": data.Name})
	}
	if len(sectorBands) == 0 {
		return nil, raceerr.TrackData("track has no sector bands", map[string]any{"track": data.Name})
	}

	nodes := make([]TrackNode, 0, n)
	for i, p := range positions {
		// diff(p || total) gives the last sample zero length; a zero-length
		// node is dropped rather than emitted.
		if lengths[i] <= 0 {
			continue
		}
		elevation := linearInterp(elevationAnchors, p)
		node := TrackNode{
			Position:    p,
			Length:      lengths[i],
			Curvature:   linearInterp(curvatureAnchors, p),
			Elevation:   elevation,
			Inclination: linearInterp(inclinationAnchors, p),
			Banking:     linearInterp(bankingAnchors, p),
			GripFactor:  stepLookup(gripBands, p),
			Sector:      int(stepLookup(sectorBands, p)),
		}

		const halfPi = 1.5707963267948966
		if node.Banking < -halfPi || node.Banking > halfPi {
			return nil, raceerr.TrackData("interpolated banking out of range", map[string]any{"index": i, "banking": node.Banking})
		}
		if node.Inclination <= -halfPi || node.Inclination >= halfPi {
			return nil, raceerr.TrackData("interpolated inclination out of range", map[string]any{"index": i, "inclination": node.Inclination})
		}
		if node.GripFactor <= 0 {
			return nil, raceerr.TrackData("interpolated grip factor non-positive", map[string]any{"index": i, "grip_factor": node.GripFactor})
		}

		nodes = append(nodes, node)
	}

	mesh := &TrackMesh{Nodes: nodes, Configuration: data.Configuration, Name: data.Name}
	return mesh, nil
}

// diffAppend returns forward differences of p with total appended, i.e.
// diff(p || total): result[i] = p[i+1]-p[i] for i < len(p)-1, and the final
// entry is total - p[len(p)-1].
func diffAppend(p []float64, total float64) []float64 {
	out := make([]float64, len(p))
	for i := 0; i < len(p)-1; i++ {
		out[i] = p[i+1] - p[i]
	}
	out[len(p)-1] = total - p[len(p)-1]
	return out
}

// curvatureAnchors builds midpoint-anchored interpolation points from
// piecewise-constant shape segments. For a closed configuration, a
// wrap-around anchor is appended one segment-length beyond the last,
// carrying the first segment's curvature value.
func curvatureAnchors(shape []ShapeSegment, cfg Configuration) []anchor {
	anchors := make([]anchor, 0, len(shape)+1)
	pos := 0.0
	for _, seg := range shape {
		mid := pos + seg.Length/2
		anchors = append(anchors, anchor{position: mid, value: seg.Curvature})
		pos += seg.Length
	}
	if cfg == Closed && len(anchors) > 0 {
		last := shape[len(shape)-1]
		anchors = append(anchors, anchor{
			position: anchors[len(anchors)-1].position + last.Length,
			value:    shape[0].Curvature,
		})
	}
	return anchors
}

func sampleAnchors(samples []Sample) []anchor {
	anchors := make([]anchor, len(samples))
	for i, s := range samples {
		anchors[i] = anchor{position: s.Position, value: s.Value}
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].position < anchors[j].position })
	return anchors
}

// slopeAnchors derives atan(slope) anchors, each positioned at the midpoint
// between two consecutive elevation anchors.
func slopeAnchors(elevation []anchor) []anchor {
	if len(elevation) < 2 {
		return []anchor{{position: 0, value: 0}}
	}
	out := make([]anchor, len(elevation)-1)
	for i := 0; i < len(elevation)-1; i++ {
		a, b := elevation[i], elevation[i+1]
		slope := math.Atan2(b.value-a.value, b.position-a.position)
		out[i] = anchor{position: (a.position + b.position) / 2, value: slope}
	}
	return out
}

// linearInterp interpolates value at x among anchors (sorted by position),
// clamping to the nearest endpoint value outside the anchor range.
func linearInterp(anchors []anchor, x float64) float64 {
	if len(anchors) == 0 {
		return 0
	}
	if len(anchors) == 1 || x <= anchors[0].position {
		return anchors[0].value
	}
	last := anchors[len(anchors)-1]
	if x >= last.position {
		return last.value
	}
	i := sort.Search(len(anchors), func(i int) bool { return anchors[i].position >= x })
	a, b := anchors[i-1], anchors[i]
	if b.position == a.position {
		return a.value
	}
	t := (x - a.position) / (b.position - a.position)
	return a.value + t*(b.value-a.value)
}

func sortedBands(bands []Band) []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// stepLookup returns the value of the band with the greatest Position that
// is still <= x (previous-value semantics); the first band's value applies
// before its own position.
func stepLookup(bands []Band, x float64) float64 {
	i := sort.Search(len(bands), func(i int) bool { return bands[i].Position > x })
	if i == 0 {
		return bands[0].Value
	}
	return bands[i-1].Value
}
