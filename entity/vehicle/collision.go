package vehicle

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
)

// Collides 判断车辆是否与任一障碍物碰撞或驶出场景边界
func (s State) Collides(scene entity.Scene) bool {
	return PoseCollides(s.Pose, s.Spec, scene)
}

// PoseCollides 判断给定位姿下的车辆是否碰撞
// 功能：对车辆有向矩形与每个障碍物做分离轴检测，并检查是否离开World
// 说明：接触（投影区间端点相等）视为碰撞；World宽高为0时不检查边界
func PoseCollides(p entity.Pose, spec entity.VehicleSpec, scene entity.Scene) bool {
	body := Footprint(p, spec)
	for _, o := range scene.Obstacles {
		if overlap(body[:], o.Corners()) {
			return true
		}
	}
	if scene.World.Width > 0 && scene.World.Height > 0 {
		for _, c := range body {
			if !scene.World.Contains(c.X, c.Y) {
				return true
			}
		}
	}
	return false
}

// overlap 两个凸四边形的分离轴检测
func overlap(a []geometry.Point, b [4]geometry.Point) bool {
	for _, poly := range [][]geometry.Point{a, b[:]} {
		for i := range poly {
			p1, p2 := poly[i], poly[(i+1)%len(poly)]
			nx, ny := p2.Y-p1.Y, p1.X-p2.X
			minA, maxA := project(a, nx, ny)
			minB, maxB := project(b[:], nx, ny)
			if maxA < minB || maxB < minA {
				return false
			}
		}
	}
	return true
}

func project(poly []geometry.Point, nx, ny float64) (lo, hi float64) {
	lo = nx*poly[0].X + ny*poly[0].Y
	hi = lo
	for _, p := range poly[1:] {
		v := nx*p.X + ny*p.Y
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return
}
