package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

func TestTracker(t *testing.T) {
	wps := []entity.Pose{{X: 100}, {X: 200}, {X: 300, Heading: 10}}
	goal := entity.Pose{X: 1000}
	tr := task.NewTracker(wps, goal, config.Tracking{WaypointRadius: 25, HandoverRadius: 250})

	target, idx := tr.Target(entity.Pose{})
	assert.Equal(t, wps[0], target)
	assert.Equal(t, 0, idx)

	// 进入到达半径
	target, idx = tr.Target(entity.Pose{X: 90, Y: 5})
	assert.Equal(t, wps[1], target)
	assert.Equal(t, 1, idx)

	// 航点已在车辆后方
	target, idx = tr.Target(entity.Pose{X: 250, Y: 40})
	assert.Equal(t, wps[2], target)
	assert.Equal(t, 2, idx)

	// 进入交接半径
	target, idx = tr.Target(entity.Pose{X: 760})
	assert.Equal(t, goal, target)
	assert.Equal(t, 3, idx)

	// 交接后保持跟踪车位
	target, idx = tr.Target(entity.Pose{})
	assert.Equal(t, goal, target)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 3, tr.Index())
}

func TestTrackerEmpty(t *testing.T) {
	goal := entity.Pose{X: 675, Y: 290}
	tr := task.NewTracker(nil, goal, config.Tracking{WaypointRadius: 25, HandoverRadius: 250})
	target, idx := tr.Target(entity.Pose{X: 100, Y: 100})
	assert.Equal(t, goal, target)
	assert.Equal(t, 0, idx)
}
