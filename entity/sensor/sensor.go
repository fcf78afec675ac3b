package sensor

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/autopark-sim/utils"
)

// DefaultRange 前向测距的最大量程
const DefaultRange = 200.

// Read 计算车辆当前的四路传感器读数
// 功能：由车辆状态与场景纯函数式地生成SensorReading
// 参数：s-车辆状态，scene-场景，sensingRange-前向测距量程（<=0时使用DefaultRange）
// 返回：传感器读数
// 算法说明：
// 1. 前向距离：从前保险杠中点沿航向发射射线，与各障碍物求最近交点，无交点时取量程
// 2. 横向偏移：车辆中心y - 车位中心y（负值表示在车位上方）
// 3. 车辆角度：航向按180度周期规约到[-90, 90]
// 4. 进入深度：车辆中心x - 车位左边界x
// 说明：读数不做裁剪，超出模糊论域的值由推理引擎在模糊化时裁剪
func Read(s vehicle.State, scene entity.Scene, sensingRange float64) entity.SensorReading {
	if sensingRange <= 0 {
		sensingRange = DefaultRange
	}
	center := scene.Spot.Center()
	return entity.SensorReading{
		FrontalDistance:  FrontalDistance(s, scene.Obstacles, sensingRange),
		LateralOffset:    s.Y - center.Y,
		VehicleAngle:     utils.ReduceAngle(s.Heading),
		PenetrationDepth: s.X - scene.Spot.X,
	}
}

// FrontalDistance 前向射线测距
func FrontalDistance(s vehicle.State, obstacles []entity.Rect, sensingRange float64) float64 {
	origin := s.FrontCenter()
	th := utils.Radians(s.Heading)
	dir := geometry.Point{X: math.Cos(th), Y: math.Sin(th)}
	d := sensingRange
	for _, o := range obstacles {
		if hit, ok := rayCast(origin, dir, o, sensingRange); ok && hit < d {
			d = hit
		}
	}
	return d
}

// rayCast 射线与轴对齐矩形求交（slab法）
// 返回：沿射线的最近交点距离；起点在矩形内时为0
func rayCast(o, dir geometry.Point, r entity.Rect, maxDist float64) (float64, bool) {
	tmin, tmax := 0., maxDist
	slabs := [2][4]float64{
		{o.X, dir.X, r.X, r.X + r.Width},
		{o.Y, dir.Y, r.Y, r.Y + r.Height},
	}
	for _, slab := range slabs {
		origin, d, lo, hi := slab[0], slab[1], slab[2], slab[3]
		if math.Abs(d) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-origin)/d, (hi-origin)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// Track 计算相对参考位姿的跟踪读数
// 功能：混合模式下，将横向偏移与车辆角度替换为相对目标位姿的误差，前向距离与进入深度保持不变
// 参数：s-车辆状态，target-当前跟踪的目标位姿，raw-原始传感器读数
// 返回：控制器使用的读数
// 算法说明：
// 1. 横向偏移：车辆中心到“过目标点、沿目标航向”的直线的有符号距离，正值表示在直线右侧（屏幕下方）
// 2. 车辆角度：车辆航向与目标航向之差，规约到[-90, 90]
// 说明：目标为车位理想位姿时与Read的结果一致
func Track(s vehicle.State, target entity.Pose, raw entity.SensorReading) entity.SensorReading {
	th := utils.Radians(target.Heading)
	dx, dy := s.X-target.X, s.Y-target.Y
	res := raw
	res.LateralOffset = -dx*math.Sin(th) + dy*math.Cos(th)
	res.VehicleAngle = utils.ReduceAngle(s.Heading - target.Heading)
	return res
}
