package report

import (
	"fmt"
	"image/color"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	obstacleColor   = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	spotColor       = color.RGBA{R: 40, G: 160, B: 60, A: 255}
	trajectoryColor = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	waypointColor   = color.RGBA{R: 220, G: 120, B: 20, A: 255}
)

// 屏幕坐标y向下，绘图时取反
func toXY(p entity.Pose) plotter.XY {
	return plotter.XY{X: p.X, Y: -p.Y}
}

func outline(r entity.Rect) plotter.XYs {
	pts := make(plotter.XYs, 0, 5)
	for _, c := range r.Corners() {
		pts = append(pts, plotter.XY{X: c.X, Y: -c.Y})
	}
	return append(pts, pts[0])
}

// WriteTrajectoryPNG 绘制场景、规划航点与实际轨迹
// 参数：path-输出文件（扩展名决定格式），scene-场景，res-Episode结果
func WriteTrajectoryPNG(path string, scene entity.Scene, res task.Result) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Episode %s: %v after %d ticks", res.ID, res.Outcome, res.Ticks)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "-y"

	add := func(pts plotter.XYs, c color.Color, width vg.Length, label string) error {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = width
		line.Color = c
		p.Add(line)
		if label != "" {
			p.Legend.Add(label, line)
		}
		return nil
	}
	for i, o := range scene.Obstacles {
		if err := add(outline(o), obstacleColor, vg.Points(1.5), lo.Ternary(i == 0, "obstacle", "")); err != nil {
			return err
		}
	}
	if err := add(outline(scene.Spot), spotColor, vg.Points(1), "spot"); err != nil {
		return err
	}
	if len(res.Trajectory) > 0 {
		if err := add(lo.Map(res.Trajectory, func(q entity.Pose, _ int) plotter.XY { return toXY(q) }), trajectoryColor, vg.Points(1), "trajectory"); err != nil {
			return err
		}
	}
	if res.Plan != nil && len(res.Plan.Waypoints) > 0 {
		sc, err := plotter.NewScatter(plotter.XYs(lo.Map(res.Plan.Waypoints, func(q entity.Pose, _ int) plotter.XY { return toXY(q) })))
		if err != nil {
			return err
		}
		sc.Color = waypointColor
		p.Add(sc)
		p.Legend.Add("waypoints", sc)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 7.5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	log.Infof("trajectory plot written to %s", path)
	return nil
}
