package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"gopkg.in/yaml.v2"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NotNil(t, c.Scene)
	assert.Equal(t, config.DefaultScene(), *c.Scene)
	assert.Equal(t, 50., c.Vehicle.Length)
	require.NotNil(t, c.Vehicle.Start)
	assert.Equal(t, config.Pose{X: 250, Y: 350}, *c.Vehicle.Start)
	assert.Equal(t, 5., *c.Control.Safety.Tolerance)
	assert.Equal(t, 75., c.Control.Safety.IdealDepth)
	assert.Equal(t, int32(3), c.Control.Safety.HoldTicks)
	assert.Equal(t, 6, c.Planner.Waypoints)
	assert.Equal(t, 1e5, c.Planner.Weights.Collision)
	assert.False(t, c.Control.Hybrid)
}

func TestUnmarshalStrict(t *testing.T) {
	data := `
vehicle:
  start: {x: 100, y: 420, heading: 15}
  length: 40
control:
  hybrid: true
  step: {total: 500}
  safety: {tolerance: 3}
planner:
  seed: 7
  generations: 30
`
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	rc := config.NewRuntimeConfig(c)

	assert.True(t, rc.C.Hybrid)
	assert.Equal(t, int32(500), rc.C.Step.Total)
	assert.Equal(t, 1., rc.C.Step.Interval)
	assert.Equal(t, 3., *rc.C.Safety.Tolerance)
	assert.Equal(t, 60., rc.C.Safety.BandMin)
	assert.Equal(t, 40., rc.All.Vehicle.Length)
	assert.Equal(t, 25., rc.All.Vehicle.Width)
	assert.Equal(t, config.Pose{X: 100, Y: 420, Heading: 15}, *rc.All.Vehicle.Start)
	assert.Equal(t, uint64(7), rc.P.Seed)
	assert.Equal(t, 30, rc.P.Generations)
	assert.Equal(t, 40, rc.P.Population)
	require.NotNil(t, rc.All.Scene)
}

func TestUnmarshalStrictRejectsUnknownField(t *testing.T) {
	var c config.Config
	assert.Error(t, yaml.UnmarshalStrict([]byte("control:\n  speed_limit: 3\n"), &c))
}

func TestInputSceneSkipsDefaultScene(t *testing.T) {
	c := config.Config{Input: config.Input{Scene: &config.InputPath{File: "scene.yaml"}}}
	c.ApplyDefaults()
	assert.Nil(t, c.Scene)
}

func TestExplicitZeroKept(t *testing.T) {
	data := `
vehicle:
  start: {x: 0, y: 0, heading: 0}
control:
  safety: {tolerance: 0}
`
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	rc := config.NewRuntimeConfig(c)
	require.NotNil(t, rc.All.Vehicle.Start)
	assert.Equal(t, config.Pose{}, *rc.All.Vehicle.Start)
	require.NotNil(t, rc.C.Safety.Tolerance)
	assert.Equal(t, 0., *rc.C.Safety.Tolerance)
	// 其余未配置项仍然填充默认值
	assert.Equal(t, 75., rc.C.Safety.IdealDepth)
}
