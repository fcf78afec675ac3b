package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
)

// WriteChartHTML 输出交互式HTML报告：适应度收敛曲线（混合模式）与车辆轨迹
func WriteChartHTML(w io.Writer, res task.Result) error {
	page := components.NewPage()
	page.PageTitle = "Parking Episode " + res.ID
	if res.Plan != nil && len(res.Plan.History) > 0 {
		page.AddCharts(fitnessChart(res.Plan.History))
	}
	page.AddCharts(trajectoryChart(res))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func fitnessChart(history []entity.GenerationStat) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "GA Fitness", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fitness per generation", Subtitle: fmt.Sprintf("generations=%d", len(history))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "generation", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fitness", Type: "log"}),
	)
	line.SetXAxis(lo.Map(history, func(h entity.GenerationStat, _ int) int { return h.Generation })).
		AddSeries("best", lo.Map(history, func(h entity.GenerationStat, _ int) opts.LineData { return opts.LineData{Value: h.Best} })).
		AddSeries("mean", lo.Map(history, func(h entity.GenerationStat, _ int) opts.LineData { return opts.LineData{Value: h.Mean} }))
	return line
}

func trajectoryChart(res task.Result) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory", Width: "900px", Height: "675px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectory", Subtitle: fmt.Sprintf("outcome=%v ticks=%d", res.Outcome, res.Ticks)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "-y", NameLocation: "middle", NameGap: 30}),
	)
	toData := func(p entity.Pose, _ int) opts.ScatterData {
		return opts.ScatterData{Value: []interface{}{p.X, -p.Y, p.Heading}}
	}
	scatter.AddSeries("trajectory", lo.Map(res.Trajectory, toData), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	if res.Plan != nil {
		scatter.AddSeries("waypoints", lo.Map(res.Plan.Waypoints, toData), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	return scatter
}
