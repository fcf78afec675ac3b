package task

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/controller"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/autopark-sim/planner"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/input"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的配置、场景与无状态组件，替代全局变量
// 说明：控制器无状态，可被多个Episode共享；规划器每次规划单独创建以隔离随机数序列
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 场景输入
	initRes *input.Input
	// 车辆参数
	spec entity.VehicleSpec
	// 模糊控制器
	controller *controller.Controller
}

// NewContext 创建新的仿真任务上下文
// 功能：加载场景、校验配置并构造控制器
// 参数：job-任务名称，c-配置对象
// 返回：初始化完成的Context；任一配置不合法时返回错误（通常为*entity.ConfigurationError）
// 算法说明：
// 1. 填充配置默认值
// 2. 加载并校验场景
// 3. 校验车辆参数与规划器参数
// 4. 编译模糊规则库
func NewContext(job string, c config.Config) (*Context, error) {
	rc := config.NewRuntimeConfig(c)
	initRes, err := input.Init(rc.All)
	if err != nil {
		return nil, err
	}
	spec := entity.VehicleSpec{Length: rc.All.Vehicle.Length, Width: rc.All.Vehicle.Width}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if _, err := planner.New(rc.P, nil); err != nil {
		return nil, err
	}
	ctrl, err := controller.New(rc.C.Safety)
	if err != nil {
		return nil, err
	}
	log.Infof("job %s: scene %q, vehicle %+v, %d rules", job, initRes.Name, spec, len(ctrl.Engine().Rules()))
	return &Context{
		job:           job,
		runtimeConfig: rc,
		initRes:       initRes,
		spec:          spec,
		controller:    ctrl,
	}, nil
}

func (ctx *Context) GetInput() *input.Input {
	return ctx.initRes
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Scene() entity.Scene {
	return ctx.initRes.Scene
}

func (ctx *Context) VehicleSpec() entity.VehicleSpec {
	return ctx.spec
}

func (ctx *Context) Controller() entity.IController {
	return ctx.controller
}

func (ctx *Context) NewPlanner(seed uint64) entity.IPlanner {
	p, err := planner.New(ctx.runtimeConfig.P, randengine.New(seed))
	if err != nil {
		// 配置已在NewContext中校验
		log.Panicf("failed to create planner: %v", err)
	}
	return p
}

// StartPose 配置中的起始位姿
func (ctx *Context) StartPose() entity.Pose {
	s := lo.FromPtr(ctx.runtimeConfig.All.Vehicle.Start)
	return entity.Pose{X: s.X, Y: s.Y, Heading: s.Heading}
}

// 随机起始位姿的最大采样次数
const maxStartAttempts = 1000

// RandomStartPose 随机起始位姿：x∈[100, 400)，y∈[200, 400)，航向±45度，避开碰撞位置
// 返回：无碰撞的位姿；连续maxStartAttempts次采样均碰撞时返回*entity.ConfigurationError
func (ctx *Context) RandomStartPose(rng *randengine.Engine) (entity.Pose, error) {
	for range maxStartAttempts {
		p := entity.Pose{
			X:       rng.Uniform(100, 400),
			Y:       rng.Uniform(200, 400),
			Heading: rng.Jitter(45),
		}
		if !vehicle.PoseCollides(p, ctx.spec, ctx.Scene()) {
			return p, nil
		}
	}
	return entity.Pose{}, &entity.ConfigurationError{
		Field:  "vehicle.start",
		Reason: fmt.Sprintf("no collision-free start pose found in %d attempts", maxStartAttempts),
	}
}

// NewEpisode 按配置创建一个Episode
func (ctx *Context) NewEpisode(c context.Context, start entity.Pose) (*Episode, error) {
	rc := ctx.runtimeConfig
	return NewEpisode(c, ctx, start, rc.C.Hybrid, rc.P.Seed)
}

// Run 从配置的起始位姿运行一个完整的Episode
func (ctx *Context) Run(c context.Context) (Result, error) {
	e, err := ctx.NewEpisode(c, ctx.StartPose())
	if err != nil {
		return Result{}, err
	}
	return e.Run(c)
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	log.Infof("job %s closed", ctx.job)
	ctx.closed.Store(true)
}
