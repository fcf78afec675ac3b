package planner

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/autopark-sim/utils"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

// Cost 适应度各分项
type Cost struct {
	Length     float64 // 路径总长
	Effort     float64 // 转向代价（度）
	Collisions int     // 发生碰撞的路段数
	Deviation  float64 // 终点位姿偏差
}

// Evaluator 适应度评估器，只读，可并发调用
type Evaluator struct {
	Start      entity.Pose
	Goal       entity.Pose
	Scene      entity.Scene
	Spec       entity.VehicleSpec
	Weights    config.Weights
	SampleStep float64
}

// Total 加权求和，越小越好
func (e Evaluator) Total(c Cost) float64 {
	w := e.Weights
	return w.Length*c.Length + w.Heading*c.Effort + w.Collision*float64(c.Collisions) + w.Final*c.Deviation
}

// Fitness 计算候选轨迹的适应度
func (e Evaluator) Fitness(genes []entity.Pose) float64 {
	return e.Total(e.Cost(genes))
}

// Cost 计算候选轨迹的各分项代价
// 功能：沿 起点->航点1->...->航点N 累计长度、转向代价与碰撞路段
// 算法说明：
// 1. 长度：相邻位姿的欧氏距离之和
// 2. 转向代价：相邻路段方向差的绝对值，加上每个航点航向与其入射路段方向之差的绝对值；第一段与起点航向比较
// 3. 碰撞：沿路段每隔SampleStep采样一次车辆位姿（航向取路段方向），任一采样点碰撞则该路段计数
// 4. 终点偏差：最后一个航点到目标的距离加航向差的绝对值
func (e Evaluator) Cost(genes []entity.Pose) Cost {
	var c Cost
	prev := e.Start
	prevDir := e.Start.Heading
	for _, q := range genes {
		d := prev.Distance(q)
		c.Length += d
		dir := prevDir
		if d > 1e-9 {
			dir = utils.Degrees(math.Atan2(q.Y-prev.Y, q.X-prev.X))
		}
		c.Effort += mathutil.Abs(utils.AngleDiff(dir, prevDir)) + mathutil.Abs(utils.AngleDiff(q.Heading, dir))
		if e.SegmentCollides(prev, q) {
			c.Collisions++
		}
		prevDir = dir
		prev = q
	}
	if len(genes) > 0 {
		last := genes[len(genes)-1]
		c.Deviation = last.Distance(e.Goal) + mathutil.Abs(utils.AngleDiff(last.Heading, e.Goal.Heading))
	}
	return c
}

// SegmentCollides 判断车辆沿直线从p行驶到q的扫掠区域是否碰撞
func (e Evaluator) SegmentCollides(p, q entity.Pose) bool {
	dx, dy := q.X-p.X, q.Y-p.Y
	d := math.Hypot(dx, dy)
	heading := p.Heading
	if d > 1e-9 {
		heading = utils.Degrees(math.Atan2(dy, dx))
	}
	step := e.SampleStep
	if step <= 0 {
		step = 10
	}
	n := max(1, int(math.Ceil(d/step)))
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pose := entity.Pose{X: p.X + dx*t, Y: p.Y + dy*t, Heading: heading}
		if vehicle.PoseCollides(pose, e.Spec, e.Scene) {
			return true
		}
	}
	return false
}
