package task_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

func newContext(t *testing.T, c config.Config) *task.Context {
	tc, err := task.NewContext("test", c)
	require.NoError(t, err)
	return tc
}

func assertParked(t *testing.T, res task.Result) {
	t.Helper()
	assert.Equal(t, task.Parked, res.Outcome)
	assert.GreaterOrEqual(t, res.Reading.PenetrationDepth, 70.)
	assert.LessOrEqual(t, res.Reading.PenetrationDepth, 80.)
	assert.LessOrEqual(t, math.Abs(res.Reading.LateralOffset), 5.)
	assert.Equal(t, 0., res.Final.Speed)
}

func TestRunParks(t *testing.T) {
	tc := newContext(t, config.Default())
	res, err := tc.Run(context.Background())
	require.NoError(t, err)
	assertParked(t, res)
	assert.Less(t, res.Ticks, int32(200))
	assert.Nil(t, res.Plan)
	assert.Len(t, res.Trajectory, int(res.Ticks)+1)
	assert.Equal(t, entity.Pose{X: 250, Y: 350}, res.Trajectory[0])
}

func TestRunHybridParks(t *testing.T) {
	c := config.Default()
	c.Control.Hybrid = true
	tc := newContext(t, c)
	e, err := tc.NewEpisode(context.Background(), tc.StartPose())
	require.NoError(t, err)

	plan := e.Plan()
	require.NotNil(t, plan)
	assert.Len(t, plan.Waypoints, 6)
	assert.True(t, plan.Feasible)

	var indices []int
	e.OnStep(func(s task.Snapshot) {
		indices = append(indices, s.WaypointIndex)
		assert.Len(t, s.Waypoints, 6)
	})
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assertParked(t, res)
	// 跟踪的航点下标单调不减，最终交接给车位
	for i := 1; i < len(indices); i++ {
		assert.GreaterOrEqual(t, indices[i], indices[i-1])
	}
	assert.Equal(t, 6, indices[len(indices)-1])
}

func TestRunCollision(t *testing.T) {
	c := config.Default()
	scene := config.DefaultScene()
	scene.Obstacles = []config.Rect{{X: 300, Y: 0, Width: 10, Height: 600}}
	c.Scene = &scene
	c.Vehicle.Start = &config.Pose{X: 250, Y: 290}
	tc := newContext(t, c)

	res, err := tc.Run(context.Background())
	assert.True(t, errors.Is(err, entity.ErrCollision))
	assert.Equal(t, task.Collided, res.Outcome)
	assert.Less(t, res.Ticks, int32(20))
}

func TestRunTimeout(t *testing.T) {
	c := config.Default()
	c.Control.Step.Total = 10
	tc := newContext(t, c)
	res, err := tc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, task.TimedOut, res.Outcome)
	assert.Equal(t, int32(10), res.Ticks)
}

func TestPauseResumeTerminate(t *testing.T) {
	tc := newContext(t, config.Default())
	e, err := tc.NewEpisode(context.Background(), tc.StartPose())
	require.NoError(t, err)

	first := e.Step()
	assert.Equal(t, int32(1), first.Tick)
	assert.Equal(t, -1, first.WaypointIndex)
	assert.NotEmpty(t, first.Decision.Fired)

	e.Pause()
	assert.True(t, e.Paused())
	paused := e.Step()
	assert.Equal(t, first, paused)

	e.Resume()
	assert.Equal(t, int32(2), e.Step().Tick)

	e.Terminate()
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, task.Terminated, res.Outcome)
	assert.Equal(t, int32(2), res.Ticks)
	// 结束后Step不再推进
	assert.Equal(t, task.Terminated, e.Step().Outcome)
}

func TestRunCancelledContext(t *testing.T) {
	tc := newContext(t, config.Default())
	e, err := tc.NewEpisode(context.Background(), tc.StartPose())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.Terminated, res.Outcome)
}

func TestResetAndReposition(t *testing.T) {
	tc := newContext(t, config.Default())
	e, err := tc.NewEpisode(context.Background(), tc.StartPose())
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, task.Parked, res.Outcome)

	require.NoError(t, e.Reset(context.Background()))
	snap := e.Snapshot()
	assert.Equal(t, task.Running, snap.Outcome)
	assert.Equal(t, tc.StartPose(), snap.Vehicle.Pose)
	again, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Final, again.Final)
	assert.Equal(t, res.Ticks, again.Ticks)

	start := entity.Pose{X: 200, Y: 250, Heading: 10}
	require.NoError(t, e.Reposition(context.Background(), start))
	assert.Equal(t, start, e.Snapshot().Vehicle.Pose)
	assert.Equal(t, int32(1), e.Step().Tick)
}

func TestRandomStartPose(t *testing.T) {
	tc := newContext(t, config.Default())
	rng := randengine.New(11)
	for range 50 {
		p, err := tc.RandomStartPose(rng)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.X, 100.)
		assert.Less(t, p.X, 400.)
		assert.GreaterOrEqual(t, p.Y, 200.)
		assert.Less(t, p.Y, 400.)
		assert.LessOrEqual(t, math.Abs(p.Heading), 45.)
	}
}

func TestNewContextRejectsBadConfig(t *testing.T) {
	c := config.Default()
	c.Vehicle.Length = -1
	_, err := task.NewContext("bad", c)
	var ce *entity.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "vehicle.length", ce.Field)

	c = config.Default()
	c.Planner.Tournament = -2
	_, err = task.NewContext("bad", c)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "planner.tournament", ce.Field)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "parked", task.Parked.String())
	assert.Equal(t, "timed_out", task.TimedOut.String())
	text, err := task.Collided.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "collided", string(text))
}

func TestBlockedStartPoseRejected(t *testing.T) {
	c := config.Default()
	// 与默认车位上边界墙重叠
	c.Vehicle.Start = &config.Pose{X: 700, Y: 175}
	tc := newContext(t, c)

	_, err := tc.NewEpisode(context.Background(), tc.StartPose())
	var ce *entity.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "vehicle.start", ce.Field)
	assert.False(t, errors.Is(err, entity.ErrCollision))

	_, err = tc.Run(context.Background())
	require.True(t, errors.As(err, &ce))

	// 越出场景边界同样不合法
	_, err = tc.NewEpisode(context.Background(), entity.Pose{X: 5, Y: 300})
	require.True(t, errors.As(err, &ce))
}

func TestRepositionToBlockedPoseKeepsEpisode(t *testing.T) {
	tc := newContext(t, config.Default())
	e, err := tc.NewEpisode(context.Background(), tc.StartPose())
	require.NoError(t, err)
	e.Step()
	before := e.Snapshot()

	err = e.Reposition(context.Background(), entity.Pose{X: 700, Y: 175})
	var ce *entity.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, before, e.Snapshot())

	require.NoError(t, e.Reset(context.Background()))
	assert.Equal(t, tc.StartPose(), e.Snapshot().Vehicle.Pose)
}

func TestRandomStartPoseGivesUp(t *testing.T) {
	c := config.Default()
	scene := config.DefaultScene()
	scene.Obstacles = append(scene.Obstacles, config.Rect{X: 50, Y: 150, Width: 400, Height: 300})
	c.Scene = &scene
	tc := newContext(t, c)

	_, err := tc.RandomStartPose(randengine.New(11))
	var ce *entity.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "vehicle.start", ce.Field)
}
