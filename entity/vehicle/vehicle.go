package vehicle

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils"
)

// State 车辆运动学状态
// 功能：记录车辆位姿与当前执行的控制量
// 说明：Pose中的位置为车辆几何中心；Steering/Speed为上一次Advance使用的（限幅后）控制量
type State struct {
	entity.Pose
	Steering float64            `json:"steering"`
	Speed    float64            `json:"speed"`
	Spec     entity.VehicleSpec `json:"-"`
}

// New 创建静止车辆
func New(pose entity.Pose, spec entity.VehicleSpec) State {
	pose.Heading = utils.WrapAngle(pose.Heading)
	return State{Pose: pose, Spec: spec}
}

// Advance 按自行车模型推进一个时间步
// 功能：根据转向角与速度计算下一时刻的车辆状态
// 参数：s-当前状态，steering-转向角（度），speed-速度，dt-时间步长
// 返回：新的状态（原状态不被修改）
// 算法说明：
// 1. 控制量限幅：转向[-40, 40]，速度[0, 10]
// 2. 航向：heading' = heading + (v/L)·tan(δ)·dt，L为轴距
// 3. 位置：沿旧航向前进v·dt
// 4. 航向规约到[-180, 180)
func Advance(s State, steering, speed, dt float64) State {
	steering = lo.Clamp(steering, -entity.MaxSteering, entity.MaxSteering)
	speed = lo.Clamp(speed, 0, entity.MaxSpeed)
	next := s
	next.Steering = steering
	next.Speed = speed
	if speed == 0 {
		return next
	}
	th := utils.Radians(s.Heading)
	yawRate := speed / s.Spec.Wheelbase() * math.Tan(utils.Radians(steering))
	next.X = s.X + speed*math.Cos(th)*dt
	next.Y = s.Y + speed*math.Sin(th)*dt
	next.Heading = utils.WrapAngle(s.Heading + utils.Degrees(yawRate*dt))
	return next
}

// FrontCenter 前保险杠中点
func (s State) FrontCenter() geometry.Point {
	th := utils.Radians(s.Heading)
	return geometry.Point{
		X: s.X + s.Spec.Length/2*math.Cos(th),
		Y: s.Y + s.Spec.Length/2*math.Sin(th),
	}
}

// Corners 车辆有向包围盒的四个角点（左后、右后、右前、左前的顺序不重要，保证首尾相接）
func (s State) Corners() [4]geometry.Point {
	return Footprint(s.Pose, s.Spec)
}

// Footprint 给定位姿下车辆占据的有向矩形
func Footprint(p entity.Pose, spec entity.VehicleSpec) [4]geometry.Point {
	th := utils.Radians(p.Heading)
	c, sn := math.Cos(th), math.Sin(th)
	hl, hw := spec.Length/2, spec.Width/2
	local := [4][2]float64{{-hl, -hw}, {hl, -hw}, {hl, hw}, {-hl, hw}}
	var res [4]geometry.Point
	for i, l := range local {
		res[i] = geometry.Point{
			X: p.X + l[0]*c - l[1]*sn,
			Y: p.Y + l[0]*sn + l[1]*c,
		}
	}
	return res
}
