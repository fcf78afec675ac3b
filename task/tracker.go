package task

import (
	"math"

	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

// Tracker 航点跟踪器
// 功能：在混合模式下为控制器选择当前跟踪的目标位姿
// 说明：航点只会前进不会回退；进入交接半径后改为直接跟踪车位理想位姿并保持
type Tracker struct {
	waypoints []entity.Pose
	goal      entity.Pose
	radius    float64
	handover  float64
	index     int
}

func NewTracker(waypoints []entity.Pose, goal entity.Pose, cfg config.Tracking) *Tracker {
	return &Tracker{
		waypoints: waypoints,
		goal:      goal,
		radius:    cfg.WaypointRadius,
		handover:  cfg.HandoverRadius,
	}
}

// Target 根据车辆位姿更新并返回当前目标
// 参数：p-车辆当前位姿
// 返回：目标位姿，目标航点下标（等于航点数时表示正在跟踪车位）
// 算法说明：
// 1. 当前航点在到达半径内，或已位于车辆后方（与航向的点积为负）时前进到下一个航点
// 2. 车辆与车位中心距离不超过交接半径时，跳过剩余航点
func (t *Tracker) Target(p entity.Pose) (entity.Pose, int) {
	th := utils.Radians(p.Heading)
	cos, sin := math.Cos(th), math.Sin(th)
	for t.index < len(t.waypoints) {
		w := t.waypoints[t.index]
		ahead := (w.X-p.X)*cos + (w.Y-p.Y)*sin
		if p.Distance(w) <= t.radius || ahead < 0 {
			t.index++
			continue
		}
		break
	}
	if t.index < len(t.waypoints) && p.Distance(t.goal) <= t.handover {
		log.Debugf("handing over to spot tracking at %v", p)
		t.index = len(t.waypoints)
	}
	if t.index < len(t.waypoints) {
		return t.waypoints[t.index], t.index
	}
	return t.goal, t.index
}

// Index 当前目标航点下标
func (t *Tracker) Index() int {
	return t.index
}

func (t *Tracker) Waypoints() []entity.Pose {
	return t.waypoints
}
