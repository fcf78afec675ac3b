package entity

import "context"

// 组件依赖倒置

// controller的依赖倒置
type IController interface {
	// 根据传感器读数计算控制指令（含安全覆盖）
	Command(reading SensorReading) Decision
}

// Decision 控制器单步输出
type Decision struct {
	Command  Command     `json:"command"`
	Override bool        `json:"override"` // 安全覆盖是否强制停车
	Capped   bool        `json:"capped"`   // 是否触发了限速
	Fired    []FiredRule `json:"fired"`    // 激活的规则，按强度降序
}

// planner的依赖倒置
type IPlanner interface {
	// 规划从start到场景目标位姿的参考轨迹，ctx取消时返回当前最优解
	Plan(ctx context.Context, start Pose, scene Scene, spec VehicleSpec) (PlanResult, error)
}

// GenerationStat 一代种群的适应度统计
type GenerationStat struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"` // 历史最优（精英保留，单调不增）
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
}

// PlanResult 规划结果
type PlanResult struct {
	Waypoints   []Pose           `json:"waypoints"`
	BestFitness float64          `json:"best_fitness"`
	Feasible    bool             `json:"feasible"`  // 最优解的所有路段均无碰撞
	Cancelled   bool             `json:"cancelled"` // 因ctx取消而提前返回
	Generations int              `json:"generations"`
	History     []GenerationStat `json:"history"`
}
