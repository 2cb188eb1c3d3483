package paramsweep

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// PointsFunc evaluates a fully-resolved vehicle configuration (e.g. by
// running the four-event competition and scoring it) and returns a single
// scalar score. Supplied by the caller so this package never imports the
// competition runner.
type PointsFunc func(vehicle.VehicleParams) (float64, error)

// SweepPoint is one sample of a 1D parameter sweep.
type SweepPoint struct {
	Value  float64
	Points float64
}

// linspace returns n values evenly spaced over [start, end] inclusive. n<2
// degenerates to a single sample at start.
func linspace(start, end float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Sweep1D linearly samples n values of the named parameter over
// [start, end], evaluating points at each via points, and returns the
// {value -> total_points} series in sampled order.
func Sweep1D(base vehicle.VehicleParams, parameterName string, start, end float64, n int, points PointsFunc) ([]SweepPoint, error) {
	param, err := Get(parameterName)
	if err != nil {
		return nil, err
	}

	values := linspace(start, end, n)
	out := make([]SweepPoint, len(values))
	for i, v := range values {
		clone := cloneParams(base)
		param.Set(&clone, v)
		score, err := points(clone)
		if err != nil {
			return nil, fmt.Errorf("paramsweep: evaluating %s=%f: %w", parameterName, v, err)
		}
		out[i] = SweepPoint{Value: v, Points: score}
	}
	return out, nil
}

// SweepSummary condenses a sweep series into the numbers an engineer scans
// first: the score spread and how linearly it tracks the swept parameter.
type SweepSummary struct {
	MeanPoints   float64
	StdDevPoints float64
	BestValue    float64
	BestPoints   float64
	Correlation  float64 // Pearson correlation of value vs. points, NaN if points is constant
}

// Summarize computes SweepSummary statistics over a sweep series using
// gonum/stat, mirroring how the teacher rolls up repeated speed samples
// into percentile statistics.
func Summarize(points []SweepPoint) SweepSummary {
	if len(points) == 0 {
		return SweepSummary{}
	}

	values := make([]float64, len(points))
	scores := make([]float64, len(points))
	best := points[0]
	for i, p := range points {
		values[i] = p.Value
		scores[i] = p.Points
		if p.Points > best.Points {
			best = p
		}
	}

	mean, stddev := stat.MeanStdDev(scores, nil)
	return SweepSummary{
		MeanPoints:   mean,
		StdDevPoints: stddev,
		BestValue:    best.Value,
		BestPoints:   best.Points,
		Correlation:  stat.Correlation(values, scores, nil),
	}
}
