package mesh

import (
	"math"
	"testing"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
	"github.com/fsae-sim/laptimesim/internal/testutil"
)

func flatOvalData() *TrackData {
	return &TrackData{
		Name:          "flat-oval",
		Configuration: Closed,
		Shape: []ShapeSegment{
			{Length: 100, Curvature: 0},
			{Length: 157, Curvature: 0.02},
			{Length: 100, Curvature: 0},
			{Length: 157, Curvature: 0.02},
		},
		Elevation:  []Sample{{Position: 0, Value: 0}, {Position: 514, Value: 0}},
		Banking:    []Sample{{Position: 0, Value: 0}, {Position: 514, Value: 0}},
		GripFactor: []Band{{Position: 0, Value: 1.0}},
		Sector:     []Band{{Position: 0, Value: 1}, {Position: 257, Value: 2}},
	}
}

func TestGeneratePositionsAndLengthsSum(t *testing.T) {
	data := flatOvalData()
	m, err := Generate(data, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	total := 0.0
	for i, n := range m.Nodes {
		if n.Length <= 0 {
			t.Fatalf("node %d: non-positive length %f", i, n.Length)
		}
		if i > 0 {
			prev := m.Nodes[i-1]
			if math.Abs(n.Position-(prev.Position+prev.Length)) > 1e-9 {
				t.Fatalf("node %d position %f != prev.position+prev.length %f", i, n.Position, prev.Position+prev.Length)
			}
		}
		total += n.Length
	}

	expectedTotal := 0.0
	for _, seg := range data.Shape {
		expectedTotal += seg.Length
	}
	testutil.AssertInDelta(t, total, expectedTotal, 1e-6)
}

func TestGenerateRejectsEmptyShape(t *testing.T) {
	data := &TrackData{Name: "empty"}
	if _, err := Generate(data, 1); err == nil {
		t.Fatal("expected error for empty shape")
	} else if !raceerr.HasKind(err, raceerr.InvalidTrackData) {
		t.Errorf("expected InvalidTrackData, got %v", err)
	}
}

func TestGenerateRejectsNonPositiveSegmentLength(t *testing.T) {
	data := &TrackData{
		Name:       "bad",
		Shape:      []ShapeSegment{{Length: 0, Curvature: 0}},
		GripFactor: []Band{{Position: 0, Value: 1}},
		Sector:     []Band{{Position: 0, Value: 1}},
	}
	if _, err := Generate(data, 1); err == nil {
		t.Fatal("expected error for non-positive segment length")
	}
}

func TestCurvatureStepInterpolatesBetweenMidpoints(t *testing.T) {
	data := flatOvalData()
	m, err := Generate(data, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// At the midpoint of the second segment (curvature 0.02) the
	// interpolated curvature should equal the segment's own value exactly.
	midOfSecondSegment := 100.0 + 157.0/2
	got := linearInterp(curvatureAnchors(data.Shape, data.Configuration), midOfSecondSegment)
	if math.Abs(got-0.02) > 1e-9 {
		t.Errorf("curvature at segment midpoint = %f, want 0.02", got)
	}

	// Sanity: generated mesh curvature stays within the segment bounds.
	for _, n := range m.Nodes {
		if n.Curvature < -0.02-1e-9 || n.Curvature > 0.02+1e-9 {
			t.Errorf("node curvature %f out of expected [0, 0.02] envelope", n.Curvature)
		}
	}
}

func TestStepLookupPreviousValueSemantics(t *testing.T) {
	bands := []Band{{Position: 0, Value: 1}, {Position: 100, Value: 2}, {Position: 200, Value: 3}}
	cases := []struct {
		x    float64
		want float64
	}{
		{x: -5, want: 1},
		{x: 0, want: 1},
		{x: 50, want: 1},
		{x: 100, want: 2},
		{x: 150, want: 2},
		{x: 200, want: 3},
		{x: 1000, want: 3},
	}
	for _, c := range cases {
		if got := stepLookup(bands, c.x); got != c.want {
			t.Errorf("stepLookup(%f) = %f, want %f", c.x, got, c.want)
		}
	}
}

func TestEnduranceReplicatesToMinimumLength(t *testing.T) {
	data := flatOvalData()
	base, err := Generate(data, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	const minLength = 22000.0
	end := Endurance(base, minLength)

	if end.TotalLength() < minLength {
		t.Errorf("endurance mesh total length %f < minimum %f", end.TotalLength(), minLength)
	}

	baseTotal := base.TotalLength()
	wantLaps := int(math.Ceil(minLength / baseTotal))
	if got := len(end.Nodes) / len(base.Nodes); got != wantLaps {
		t.Errorf("endurance laps = %d, want %d", got, wantLaps)
	}

	// Positions must remain strictly increasing across lap boundaries.
	for i := 1; i < len(end.Nodes); i++ {
		if end.Nodes[i].Position <= end.Nodes[i-1].Position {
			t.Fatalf("positions not strictly increasing at index %d", i)
		}
	}
}

func TestValidateCatchesNonPositiveLength(t *testing.T) {
	m := &TrackMesh{Nodes: []TrackNode{{Position: 0, Length: -1, GripFactor: 1}}}
	if err := m.Validate(); err == nil {
		t.Fatal("expected Validate to reject non-positive length")
	}
}

