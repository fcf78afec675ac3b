package entity

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// Pose 平面位姿
// 说明：屏幕坐标系，x向右、y向下；Heading单位为度，0表示朝向x正方向
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

func (p Pose) Point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose{X=%.2f, Y=%.2f, Heading=%.2f}", p.X, p.Y, p.Heading)
}

// Distance 两个位姿之间的平面距离
func (p Pose) Distance(o Pose) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Rect 轴对齐矩形（左上角+宽高）
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center 矩形中心点
func (r Rect) Center() geometry.Point {
	return geometry.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains 判断点是否在矩形内（含边界）
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Corners 按顺时针返回四个角点
func (r Rect) Corners() [4]geometry.Point {
	return [4]geometry.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Scene 停车场景
// 功能：描述一次泊车任务的静态环境
// 说明：一次Episode内不可变；Spot为目标车位，Obstacles为障碍物（包括车位边界），World为可行驶范围
type Scene struct {
	World     Rect   `json:"world"`
	Spot      Rect   `json:"spot"`
	Obstacles []Rect `json:"obstacles"`
}

// Goal 车位理想停车位姿：车位中心、车头朝向0度
func (s Scene) Goal() Pose {
	c := s.Spot.Center()
	return Pose{X: c.X, Y: c.Y, Heading: 0}
}

// Validate 检查场景是否合法
func (s Scene) Validate() error {
	if s.World.Width <= 0 || s.World.Height <= 0 {
		return &ConfigurationError{Field: "scene.world", Reason: "width and height must be positive"}
	}
	if s.Spot.Width <= 0 || s.Spot.Height <= 0 {
		return &ConfigurationError{Field: "scene.spot", Reason: "width and height must be positive"}
	}
	for i, o := range s.Obstacles {
		if o.Width <= 0 || o.Height <= 0 {
			return &ConfigurationError{Field: fmt.Sprintf("scene.obstacles[%d]", i), Reason: "width and height must be positive"}
		}
	}
	return nil
}

// VehicleSpec 车辆几何参数
type VehicleSpec struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// 轴距与车长之比
const WheelbaseRatio = 0.7

// Wheelbase 轴距
func (v VehicleSpec) Wheelbase() float64 {
	return WheelbaseRatio * v.Length
}

func (v VehicleSpec) Validate() error {
	if v.Length <= 0 {
		return &ConfigurationError{Field: "vehicle.length", Reason: "must be positive"}
	}
	if v.Width <= 0 {
		return &ConfigurationError{Field: "vehicle.width", Reason: "must be positive"}
	}
	return nil
}

// SensorReading 传感器读数，每个tick由车辆状态和场景重新计算
type SensorReading struct {
	FrontalDistance  float64 `json:"frontal_distance"`  // 前方障碍物距离
	LateralOffset    float64 `json:"lateral_offset"`    // 横向偏移，负值表示在目标上方
	VehicleAngle     float64 `json:"vehicle_angle"`     // 车辆朝向，[-90, 90]
	PenetrationDepth float64 `json:"penetration_depth"` // 进入车位的深度
}

// Command 控制指令
type Command struct {
	Steering float64 `json:"steering"` // 转向角（度）
	Speed    float64 `json:"speed"`    // 速度（单位/tick）
}

// 执行器限幅
const (
	MaxSteering = 40.
	MaxSpeed    = 10.
)

// FiredRule 被激活的规则，用于可解释性展示
type FiredRule struct {
	Index    int     `json:"index"`    // 规则在规则库中的序号（从0开始）
	Label    string  `json:"label"`    // 规则的可读描述
	Strength float64 `json:"strength"` // 激活强度，(0, 1]
}
