// Package report turns a finished Solution into artifacts an engineer can
// actually look at: static PNG channel traces via gonum/plot and an
// interactive HTML lap-time dashboard via go-echarts.
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fsae-sim/laptimesim/internal/channels"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/units"
)

// Trace is one named channel evaluated against a Solution, ready to plot.
type Trace struct {
	Channel string
	Color   int // index into a fixed palette; wraps if out of range

	// DisplayUnit overrides a Velocity channel's native m/s axis (e.g.
	// units.MPH). Ignored for non-Velocity channels.
	DisplayUnit string
}

// palette mirrors the teacher's HSL-spread line colors, evaluated ahead of
// time instead of at plot time since the trace count here is always small.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// PlotChannels draws one or more channels against Position on a single axis
// and saves it as a PNG. All channels must share a node count with the
// solution (true by construction — see internal/channels).
func PlotChannels(sol *solution.Solution, traces []Trace, title, outputPath string) error {
	if len(traces) == 0 {
		return fmt.Errorf("report: PlotChannels requires at least one trace")
	}

	xs, err := channels.Eval("Position", sol)
	if err != nil {
		return fmt.Errorf("report: eval Position: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Position (m)"

	for i, tr := range traces {
		ys, err := channels.Eval(tr.Channel, sol)
		if err != nil {
			return fmt.Errorf("report: eval %s: %w", tr.Channel, err)
		}
		ch, err := channels.Get(tr.Channel)
		if err != nil {
			return fmt.Errorf("report: get %s: %w", tr.Channel, err)
		}

		unitLabel := ch.DefaultUnit
		if ch.Quantity == channels.QuantityVelocity && tr.DisplayUnit != "" {
			ys = units.ConvertSpeedSeries(ys, tr.DisplayUnit)
			unitLabel = units.SpeedUnitLabel(tr.DisplayUnit)
		}

		pts := make(plotter.XYs, len(xs))
		for j := range xs {
			pts[j].X = xs[j]
			pts[j].Y = ys[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: new line for %s: %w", tr.Channel, err)
		}
		line.Color = hexColor(palette[colorIndex(tr, i)])
		line.Width = vg.Points(1.5)
		p.Add(line)
		label := fmt.Sprintf("%s (%s)", ch.Name, unitLabel)
		p.Legend.Add(label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(12*vg.Inch, 5*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("report: save plot: %w", err)
	}
	return nil
}

func colorIndex(tr Trace, fallback int) int {
	if tr.Color >= 0 {
		return tr.Color % len(palette)
	}
	return fallback % len(palette)
}

// PlotGG draws a GG diagram: lateral acceleration on the X axis against
// longitudinal acceleration on the Y axis, one point per solution node. This
// is the friction-circle envelope an engineer checks the vehicle model
// against, not a channel-vs-position trace, so it gets its own entry point
// rather than a Trace.
func PlotGG(sol *solution.Solution, title, outputPath string) error {
	lateral, err := channels.Eval("LateralAcceleration", sol)
	if err != nil {
		return fmt.Errorf("report: eval LateralAcceleration: %w", err)
	}
	longitudinal, err := channels.Eval("LongitudinalAcceleration", sol)
	if err != nil {
		return fmt.Errorf("report: eval LongitudinalAcceleration: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Lateral acceleration (m/s^2)"
	p.Y.Label.Text = "Longitudinal acceleration (m/s^2)"

	pts := make(plotter.XYs, len(lateral))
	for i := range lateral {
		pts[i].X = lateral[i]
		pts[i].Y = longitudinal[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("report: new scatter: %w", err)
	}
	scatter.Color = hexColor(palette[0])
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("report: save gg plot: %w", err)
	}
	return nil
}
