package controller

import (
	"cmp"
	"slices"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/fuzzy"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

// Controller 模糊泊车控制器
// 功能：对传感器读数做Mamdani推理得到转向与速度，再施加安全覆盖
// 说明：无内部状态，相同输入总是得到相同输出；安全覆盖独立于规则库
type Controller struct {
	engine    *fuzzy.Engine
	safety    config.Safety
	tolerance float64
	labels    []string
}

// New 创建控制器
// 功能：编译固定规则库并校验安全覆盖参数
// 参数：safety-安全覆盖配置（Tolerance为nil时按0处理）
// 返回：控制器指针；参数不合法时返回*entity.ConfigurationError
func New(safety config.Safety) (*Controller, error) {
	if safety.BandMin > safety.BandMax {
		return nil, &entity.ConfigurationError{Field: "control.safety.band_min", Reason: "must not exceed band_max"}
	}
	if safety.IdealDepth < safety.BandMin || safety.IdealDepth > safety.BandMax {
		return nil, &entity.ConfigurationError{Field: "control.safety.ideal_depth", Reason: "must lie inside [band_min, band_max]"}
	}
	tolerance := lo.FromPtr(safety.Tolerance)
	if tolerance < 0 {
		return nil, &entity.ConfigurationError{Field: "control.safety.tolerance", Reason: "must not be negative"}
	}
	engine, err := fuzzy.NewEngine(Inputs(), Outputs(), Rules())
	if err != nil {
		return nil, &entity.ConfigurationError{Field: "rules", Reason: err.Error()}
	}
	return &Controller{
		engine:    engine,
		safety:    safety,
		tolerance: tolerance,
		labels:    lo.Map(engine.Rules(), func(r fuzzy.Rule, _ int) string { return r.String() }),
	}, nil
}

// Engine 底层推理引擎
func (c *Controller) Engine() *fuzzy.Engine {
	return c.engine
}

// Infer 纯模糊推理（不含安全覆盖）
// 返回：限幅后的控制指令，以及激活强度大于0的规则（按强度降序，强度相同按序号升序）
func (c *Controller) Infer(r entity.SensorReading) (entity.Command, []entity.FiredRule) {
	res, err := c.engine.Infer(map[string]float64{
		Frontal: r.FrontalDistance,
		Lateral: r.LateralOffset,
		Angle:   r.VehicleAngle,
		Depth:   r.PenetrationDepth,
	})
	if err != nil {
		log.Panicf("fuzzy inference failed: %v", err)
	}
	cmd := entity.Command{
		Steering: lo.Clamp(res.Outputs[Steering], -entity.MaxSteering, entity.MaxSteering),
		Speed:    lo.Clamp(res.Outputs[Speed], 0, entity.MaxSpeed),
	}
	fired := make([]entity.FiredRule, 0, len(res.Strengths))
	for i, w := range res.Strengths {
		if w > 0 {
			fired = append(fired, entity.FiredRule{Index: i, Label: c.labels[i], Strength: w})
		}
	}
	slices.SortStableFunc(fired, func(a, b entity.FiredRule) int {
		return cmp.Compare(b.Strength, a.Strength)
	})
	return cmd, fired
}

// Override 安全覆盖
// 功能：进入深度在中心区间且接近理想深度时强制停车，在区间内其他位置限速
// 参数：r-传感器读数，cmd-模糊推理得到的指令
// 返回：覆盖后的指令，是否强制停车，是否限速
func (c *Controller) Override(r entity.SensorReading, cmd entity.Command) (entity.Command, bool, bool) {
	cmd.Steering = lo.Clamp(cmd.Steering, -entity.MaxSteering, entity.MaxSteering)
	cmd.Speed = lo.Clamp(cmd.Speed, 0, entity.MaxSpeed)
	d := r.PenetrationDepth
	if d < c.safety.BandMin || d > c.safety.BandMax {
		return cmd, false, false
	}
	if mathutil.Abs(d-c.safety.IdealDepth) <= c.tolerance {
		return entity.Command{}, true, false
	}
	if c.safety.SlowSpeed > 0 && cmd.Speed > c.safety.SlowSpeed {
		cmd.Speed = c.safety.SlowSpeed
		return cmd, false, true
	}
	return cmd, false, false
}

// Command 推理并施加安全覆盖，实现entity.IController
func (c *Controller) Command(r entity.SensorReading) entity.Decision {
	cmd, fired := c.Infer(r)
	cmd, override, capped := c.Override(r, cmd)
	if override {
		log.Debugf("safety override engaged at depth %.2f", r.PenetrationDepth)
	}
	return entity.Decision{Command: cmd, Override: override, Capped: capped, Fired: fired}
}
