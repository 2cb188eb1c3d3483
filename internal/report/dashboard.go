package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fsae-sim/laptimesim/internal/channels"
	"github.com/fsae-sim/laptimesim/internal/solution"
)

// Dashboard renders an interactive multi-channel lap-time view: one line
// chart per requested channel, all sharing a Position x-axis, composited
// onto a single HTML page.
func Dashboard(sol *solution.Solution, channelNames []string, title string, w io.Writer) error {
	if len(channelNames) == 0 {
		return fmt.Errorf("report: Dashboard requires at least one channel")
	}

	xs, err := channels.Eval("Position", sol)
	if err != nil {
		return fmt.Errorf("report: eval Position: %w", err)
	}
	xAxis := make([]string, len(xs))
	for i, x := range xs {
		xAxis[i] = fmt.Sprintf("%.1f", x)
	}

	page := components.NewPage()
	page.PageTitle = title

	for _, name := range channelNames {
		ys, err := channels.Eval(name, sol)
		if err != nil {
			return fmt.Errorf("report: eval %s: %w", name, err)
		}
		ch, err := channels.Get(name)
		if err != nil {
			return fmt.Errorf("report: get %s: %w", name, err)
		}

		data := make([]opts.LineData, len(ys))
		for i, y := range ys {
			data[i] = opts.LineData{Value: y}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "400px"}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s (%s)", ch.Name, ch.DefaultUnit)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Position (m)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: ch.DefaultUnit}),
		)
		line.SetXAxis(xAxis).
			AddSeries(ch.Name, data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

		page.AddCharts(line)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render dashboard: %w", err)
	}
	return nil
}

// LapSummary is the small set of scalar headline numbers of a finished lap.
type LapSummary struct {
	TotalTime   float64
	TotalLength float64
}

// Summarize computes the headline numbers for a finished Solution.
func Summarize(sol *solution.Solution) LapSummary {
	return LapSummary{TotalTime: sol.TotalTime(), TotalLength: sol.TotalLength()}
}
