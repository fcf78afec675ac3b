package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/planner"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

var spec = entity.VehicleSpec{Length: 50, Width: 25}

func parkingScene() entity.Scene {
	return entity.Scene{
		World: entity.Rect{X: 0, Y: 0, Width: 800, Height: 600},
		Spot:  entity.Rect{X: 600, Y: 250, Width: 150, Height: 80},
		Obstacles: []entity.Rect{
			{X: 600, Y: 170, Width: 150, Height: 10},
			{X: 600, Y: 410, Width: 150, Height: 10},
			{X: 750, Y: 170, Width: 10, Height: 250},
		},
	}
}

func plannerConfig(generations int) config.Planner {
	c := config.Default().Planner
	c.Generations = generations
	return c
}

func newPlanner(t *testing.T, cfg config.Planner, seed uint64) *planner.Planner {
	p, err := planner.New(cfg, randengine.New(seed))
	require.NoError(t, err)
	return p
}

func TestPlan(t *testing.T) {
	cfg := plannerConfig(40)
	p := newPlanner(t, cfg, 1)
	start := entity.Pose{X: 250, Y: 350}
	res, err := p.Plan(context.Background(), start, parkingScene(), spec)
	require.NoError(t, err)

	assert.Len(t, res.Waypoints, cfg.Waypoints)
	assert.True(t, res.Feasible)
	assert.False(t, res.Cancelled)
	assert.Less(t, res.BestFitness, cfg.Weights.Collision)
	assert.LessOrEqual(t, res.Generations, cfg.Generations)
	assert.Len(t, res.History, res.Generations)
	for i := 1; i < len(res.History); i++ {
		assert.LessOrEqual(t, res.History[i].Best, res.History[i-1].Best, "generation %d", i)
	}
	assert.Equal(t, res.BestFitness, res.History[len(res.History)-1].Best)

	// 终点靠近车位中心
	goal := parkingScene().Goal()
	last := res.Waypoints[len(res.Waypoints)-1]
	assert.Less(t, last.Distance(goal), 30.)
}

func TestPlanDeterministic(t *testing.T) {
	cfg := plannerConfig(15)
	start := entity.Pose{X: 200, Y: 420, Heading: 10}
	a, err := newPlanner(t, cfg, 99).Plan(context.Background(), start, parkingScene(), spec)
	require.NoError(t, err)
	b, err := newPlanner(t, cfg, 99).Plan(context.Background(), start, parkingScene(), spec)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("same seed produced different plans (-a +b):\n%s", diff)
	}
}

func TestPlanInfeasible(t *testing.T) {
	scene := parkingScene()
	// 在车位入口前加一堵墙，目标被完全封闭
	scene.Obstacles = append(scene.Obstacles, entity.Rect{X: 560, Y: 150, Width: 20, Height: 300})
	cfg := plannerConfig(20)
	res, err := newPlanner(t, cfg, 1).Plan(context.Background(), entity.Pose{X: 250, Y: 350}, scene, spec)
	require.NoError(t, err)
	assert.Len(t, res.Waypoints, cfg.Waypoints)
	assert.False(t, res.Feasible)
	assert.GreaterOrEqual(t, res.BestFitness, cfg.Weights.Collision)
}

func TestPlanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := plannerConfig(80)
	res, err := newPlanner(t, cfg, 5).Plan(ctx, entity.Pose{X: 250, Y: 350}, parkingScene(), spec)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Generations)
	assert.Len(t, res.Waypoints, cfg.Waypoints)
}

func TestPlanRejectsBadScene(t *testing.T) {
	scene := parkingScene()
	scene.Spot.Width = 0
	_, err := newPlanner(t, plannerConfig(5), 1).Plan(context.Background(), entity.Pose{}, scene, spec)
	var ce *entity.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := plannerConfig(10)
	cfg.Population = 1
	_, err := planner.New(cfg, nil)
	var ce *entity.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "planner.population", ce.Field)

	cfg = plannerConfig(10)
	cfg.CrossoverRate = 1.5
	_, err = planner.New(cfg, nil)
	assert.Error(t, err)
}

func openEvaluator() planner.Evaluator {
	return planner.Evaluator{
		Start: entity.Pose{X: 100, Y: 100},
		Goal:  entity.Pose{X: 400, Y: 100},
		Scene: entity.Scene{
			World: entity.Rect{Width: 1000, Height: 1000},
			Spot:  entity.Rect{X: 325, Y: 60, Width: 150, Height: 80},
		},
		Spec:       spec,
		Weights:    config.Default().Planner.Weights,
		SampleStep: 10,
	}
}

func TestCostStraight(t *testing.T) {
	e := openEvaluator()
	c := e.Cost([]entity.Pose{{X: 200, Y: 100}, {X: 300, Y: 100}, {X: 400, Y: 100}})
	assert.InDelta(t, 300., c.Length, 1e-9)
	assert.InDelta(t, 0., c.Effort, 1e-9)
	assert.Equal(t, 0, c.Collisions)
	assert.InDelta(t, 0., c.Deviation, 1e-9)
	assert.InDelta(t, 300., e.Total(c), 1e-9)
}

func TestCostTurnAndDeviation(t *testing.T) {
	e := openEvaluator()
	c := e.Cost([]entity.Pose{{X: 200, Y: 100}, {X: 200, Y: 200, Heading: 90}})
	assert.InDelta(t, 200., c.Length, 1e-9)
	assert.InDelta(t, 90., c.Effort, 1e-9)
	// 终点距目标(400,100)为sqrt(200^2+100^2)，航向差90
	assert.InDelta(t, 223.6068+90, c.Deviation, 1e-3)
	assert.InDelta(t, 200+2*90+10*(223.6068+90), e.Fitness([]entity.Pose{{X: 200, Y: 100}, {X: 200, Y: 200, Heading: 90}}), 1e-2)
}

func TestSegmentCollides(t *testing.T) {
	e := openEvaluator()
	e.Scene.Obstacles = []entity.Rect{{X: 290, Y: 0, Width: 20, Height: 150}}
	assert.True(t, e.SegmentCollides(entity.Pose{X: 100, Y: 100}, entity.Pose{X: 500, Y: 100}))
	assert.False(t, e.SegmentCollides(entity.Pose{X: 100, Y: 300}, entity.Pose{X: 500, Y: 300}))
	assert.Equal(t, 1, e.Cost([]entity.Pose{{X: 500, Y: 100}, {X: 500, Y: 300}}).Collisions)
}
