package task

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/clock"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/entity/sensor"
	"github.com/tsinghua-fib-lab/autopark-sim/entity/vehicle"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// 暂停状态下Run的轮询间隔
const pausePollInterval = 10 * time.Millisecond

// Outcome Episode的状态
type Outcome int

const (
	Running    Outcome = iota // 进行中
	Parked                    // 安全覆盖连续保持，泊车完成
	Collided                  // 发生碰撞，Episode失败
	TimedOut                  // 超过最大步数
	Terminated                // 被外部终止
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Parked:
		return "parked"
	case Collided:
		return "collided"
	case TimedOut:
		return "timed_out"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Snapshot 每个tick的输出，供渲染或调试面板使用
// 说明：Reading与Input为本步决策时的读数，Vehicle为执行决策后的状态
type Snapshot struct {
	Tick          int32                `json:"tick"`
	Time          float64              `json:"time"`
	Vehicle       vehicle.State        `json:"vehicle"`
	Reading       entity.SensorReading `json:"reading"` // 原始传感器读数
	Input         entity.SensorReading `json:"input"`   // 控制器实际使用的读数（混合模式下为跟踪误差）
	Decision      entity.Decision      `json:"decision"`
	Waypoints     []entity.Pose        `json:"waypoints,omitempty"`
	WaypointIndex int                  `json:"waypoint_index"` // 等于航点数时表示正在跟踪车位，非混合模式为-1
	Outcome       Outcome              `json:"outcome"`
}

// Result Episode结束时的汇总
type Result struct {
	ID         string               `json:"id"`
	Outcome    Outcome              `json:"outcome"`
	Ticks      int32                `json:"ticks"`
	Final      vehicle.State        `json:"final"`
	Reading    entity.SensorReading `json:"reading"` // 最终位置的原始读数
	Plan       *entity.PlanResult   `json:"plan,omitempty"`
	Trajectory []entity.Pose        `json:"trajectory"`
}

// Episode 一次泊车过程
// 功能：持有一次泊车的全部可变状态，按tick执行 传感->推理->覆盖->运动->碰撞检测 闭环
// 说明：Step/Reset/Reposition互斥执行；Pause/Resume/Terminate可在任意goroutine中调用
type Episode struct {
	id     string
	ctx    entity.ITaskContext
	clock  *clock.Clock
	hybrid bool
	seed   uint64

	mtx        sync.Mutex
	start      entity.Pose
	state      vehicle.State
	tracker    *Tracker
	plan       *entity.PlanResult
	holds      int32
	outcome    Outcome
	last       Snapshot
	trajectory []entity.Pose
	observers  []func(Snapshot)

	paused     atomic.Bool
	terminated atomic.Bool

	planMtx    sync.Mutex
	planCancel context.CancelFunc
}

// NewEpisode 创建Episode
// 功能：初始化车辆与时钟，混合模式下先完成一次轨迹规划
// 参数：ctx-取消信号（仅作用于初始规划），tc-任务上下文，start-起始位姿，hybrid-是否启用规划+跟踪，seed-规划随机种子
// 返回：Episode指针；车辆参数或起始位姿不合法、规划失败时返回错误
func NewEpisode(ctx context.Context, tc entity.ITaskContext, start entity.Pose, hybrid bool, seed uint64) (*Episode, error) {
	if err := tc.VehicleSpec().Validate(); err != nil {
		return nil, err
	}
	e := &Episode{
		id:     uuid.New().String(),
		ctx:    tc,
		clock:  clock.New(tc.RuntimeConfig().C.Step),
		hybrid: hybrid,
		seed:   seed,
	}
	if err := e.reposition(ctx, start); err != nil {
		return nil, err
	}
	log.Infof("episode %s created at %v (hybrid=%v)", e.id, start, hybrid)
	return e, nil
}

func (e *Episode) ID() string {
	return e.id
}

// OnStep 注册每个tick完成后的回调（在Step所在goroutine中调用）
func (e *Episode) OnStep(f func(Snapshot)) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.observers = append(e.observers, f)
}

// Step 执行一个tick
// 返回：本tick的快照；Episode已结束或暂停时返回上一次的快照
func (e *Episode) Step() Snapshot {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.outcome != Running {
		return e.last
	}
	if e.terminated.Load() {
		return e.finish(Terminated)
	}
	if e.paused.Load() {
		return e.last
	}
	if e.clock.Done() {
		return e.finish(TimedOut)
	}

	rc := e.ctx.RuntimeConfig()
	scene := e.ctx.Scene()
	raw := sensor.Read(e.state, scene, rc.C.SensingRange)
	in := raw
	index := -1
	if e.tracker != nil {
		var target entity.Pose
		target, index = e.tracker.Target(e.state.Pose)
		in = sensor.Track(e.state, target, raw)
	}
	d := e.ctx.Controller().Command(in)
	if d.Override {
		e.holds++
	} else {
		e.holds = 0
	}
	e.state = vehicle.Advance(e.state, d.Command.Steering, d.Command.Speed, e.clock.DT)
	e.clock.Next()
	e.trajectory = append(e.trajectory, e.state.Pose)

	switch {
	case e.state.Collides(scene):
		e.outcome = Collided
		log.Warnf("episode %s collided at tick %d: %v", e.id, e.clock.Elapsed(), e.state.Pose)
	case e.holds >= rc.C.Safety.HoldTicks:
		e.outcome = Parked
		log.Infof("episode %s parked at tick %d: %v", e.id, e.clock.Elapsed(), e.state.Pose)
	}

	e.last = Snapshot{
		Tick:          e.clock.Elapsed(),
		Time:          e.clock.T,
		Vehicle:       e.state,
		Reading:       raw,
		Input:         in,
		Decision:      d,
		Waypoints:     e.waypoints(),
		WaypointIndex: index,
		Outcome:       e.outcome,
	}
	if n := int32(*heartBeatInterval); n > 0 && e.clock.Elapsed()%n == 0 {
		log.Infof("STEP: %d(%v) %v depth=%.1f lateral=%.1f", e.clock.Elapsed(), e.clock, e.state.Pose, raw.PenetrationDepth, raw.LateralOffset)
	}
	for _, f := range e.observers {
		f(e.last)
	}
	return e.last
}

// finish 在不推进车辆的情况下结束Episode（调用方持有mtx）
func (e *Episode) finish(o Outcome) Snapshot {
	e.outcome = o
	e.last.Outcome = o
	e.last.Tick = e.clock.Elapsed()
	e.last.Time = e.clock.T
	e.last.Vehicle = e.state
	log.Infof("episode %s %v at tick %d", e.id, o, e.clock.Elapsed())
	return e.last
}

// Run 循环执行Step直到Episode结束
// 功能：ctx取消时等价于Terminate；暂停期间等待恢复
// 返回：Episode汇总；碰撞时同时返回包装了entity.ErrCollision的错误
func (e *Episode) Run(ctx context.Context) (Result, error) {
	for {
		if ctx.Err() != nil {
			e.Terminate()
		}
		snap := e.Step()
		if snap.Outcome != Running {
			break
		}
		if e.paused.Load() {
			select {
			case <-ctx.Done():
			case <-time.After(pausePollInterval):
			}
		}
	}
	res := e.Result()
	if res.Outcome == Collided {
		return res, fmt.Errorf("episode %s at tick %d, %v: %w", e.id, res.Ticks, res.Final.Pose, entity.ErrCollision)
	}
	return res, nil
}

// Pause 暂停，之后的Step不推进
func (e *Episode) Pause() {
	e.paused.Store(true)
}

// Resume 恢复
func (e *Episode) Resume() {
	e.paused.Store(false)
}

func (e *Episode) Paused() bool {
	return e.paused.Load()
}

// Terminate 终止Episode，同时取消进行中的规划
func (e *Episode) Terminate() {
	e.terminated.Store(true)
	e.cancelPlanning()
}

// Reset 回到起始位姿重新开始，混合模式下重新规划
func (e *Episode) Reset(ctx context.Context) error {
	e.cancelPlanning()
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.reposition(ctx, e.start)
}

// Reposition 把车辆移到新的起始位姿重新开始，混合模式下重新规划
func (e *Episode) Reposition(ctx context.Context, start entity.Pose) error {
	e.cancelPlanning()
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.reposition(ctx, start)
}

// reposition 调用方持有mtx（或处于构造阶段）
// 起始位姿与障碍物重叠或越出场景时返回*entity.ConfigurationError，Episode状态保持不变
func (e *Episode) reposition(ctx context.Context, start entity.Pose) error {
	if vehicle.PoseCollides(start, e.ctx.VehicleSpec(), e.ctx.Scene()) {
		return &entity.ConfigurationError{
			Field:  "vehicle.start",
			Reason: fmt.Sprintf("start pose %v collides with an obstacle or leaves the world", start),
		}
	}
	e.start = start
	e.state = vehicle.New(start, e.ctx.VehicleSpec())
	e.clock.Init()
	e.holds = 0
	e.outcome = Running
	e.terminated.Store(false)
	e.trajectory = []entity.Pose{e.state.Pose}
	e.tracker = nil
	e.plan = nil
	if e.hybrid {
		if err := e.replan(ctx); err != nil {
			return err
		}
	}
	e.last = Snapshot{
		Vehicle:       e.state,
		Waypoints:     e.waypoints(),
		WaypointIndex: lo.Ternary(e.tracker != nil, 0, -1),
		Outcome:       Running,
	}
	return nil
}

func (e *Episode) replan(ctx context.Context) error {
	pctx, cancel := context.WithCancel(ctx)
	e.planMtx.Lock()
	e.planCancel = cancel
	e.planMtx.Unlock()
	defer func() {
		e.planMtx.Lock()
		e.planCancel = nil
		e.planMtx.Unlock()
		cancel()
	}()

	scene := e.ctx.Scene()
	res, err := e.ctx.NewPlanner(e.seed).Plan(pctx, e.state.Pose, scene, e.ctx.VehicleSpec())
	if err != nil {
		return fmt.Errorf("episode %s planning failed: %w", e.id, err)
	}
	e.plan = &res
	e.tracker = NewTracker(res.Waypoints, scene.Goal(), e.ctx.RuntimeConfig().C.Tracking)
	return nil
}

func (e *Episode) cancelPlanning() {
	e.planMtx.Lock()
	defer e.planMtx.Unlock()
	if e.planCancel != nil {
		e.planCancel()
	}
}

func (e *Episode) waypoints() []entity.Pose {
	if e.tracker == nil {
		return nil
	}
	return e.tracker.Waypoints()
}

// Snapshot 最近一次的快照
func (e *Episode) Snapshot() Snapshot {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.last
}

// Plan 当前使用的规划结果，非混合模式为nil
func (e *Episode) Plan() *entity.PlanResult {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.plan
}

// Result 当前的汇总信息
func (e *Episode) Result() Result {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return Result{
		ID:         e.id,
		Outcome:    e.outcome,
		Ticks:      e.clock.Elapsed(),
		Final:      e.state,
		Reading:    sensor.Read(e.state, e.ctx.Scene(), e.ctx.RuntimeConfig().C.SensingRange),
		Plan:       e.plan,
		Trajectory: slices.Clone(e.trajectory),
	}
}
