package config

import "github.com/samber/lo"

// DefaultScene 默认泊车场景：800x600的场地，右侧为带上下边界与后墙的平行车位
func DefaultScene() Scene {
	return Scene{
		Name:  "default",
		World: Rect{X: 0, Y: 0, Width: 800, Height: 600},
		Spot:  Rect{X: 600, Y: 250, Width: 150, Height: 80},
		Obstacles: []Rect{
			{X: 600, Y: 170, Width: 150, Height: 10},
			{X: 600, Y: 410, Width: 150, Height: 10},
			{X: 750, Y: 170, Width: 10, Height: 250},
		},
	}
}

// Default 返回全部使用默认值的配置
func Default() Config {
	c := Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults 为未设置的配置项填充默认值
// 说明：数值项以零值表示未设置；vehicle.start与control.safety.tolerance以nil表示未设置，可显式配置为0
// Hybrid等布尔开关没有默认值；Scene与Input.Scene都为空时填充默认场景
func (c *Config) ApplyDefaults() {
	if c.Scene == nil && c.Input.Scene == nil {
		s := DefaultScene()
		c.Scene = &s
	}
	v := &c.Vehicle
	if v.Length == 0 {
		v.Length = 50
	}
	if v.Width == 0 {
		v.Width = 25
	}
	if v.Start == nil {
		v.Start = &Pose{X: 250, Y: 350, Heading: 0}
	}

	ctl := &c.Control
	if ctl.Step.Total == 0 {
		ctl.Step.Total = 2000
	}
	if ctl.Step.Interval == 0 {
		ctl.Step.Interval = 1
	}
	if ctl.SensingRange == 0 {
		ctl.SensingRange = 200
	}
	s := &ctl.Safety
	if s.BandMin == 0 && s.BandMax == 0 {
		s.BandMin, s.BandMax = 60, 90
	}
	if s.IdealDepth == 0 {
		s.IdealDepth = 75
	}
	if s.Tolerance == nil {
		s.Tolerance = lo.ToPtr(5.)
	}
	if s.SlowSpeed == 0 {
		s.SlowSpeed = 5
	}
	if s.HoldTicks == 0 {
		s.HoldTicks = 3
	}
	if ctl.Tracking.WaypointRadius == 0 {
		ctl.Tracking.WaypointRadius = 25
	}
	if ctl.Tracking.HandoverRadius == 0 {
		ctl.Tracking.HandoverRadius = 250
	}

	p := &c.Planner
	if p.Seed == 0 {
		p.Seed = 42
	}
	if p.Waypoints == 0 {
		p.Waypoints = 6
	}
	if p.Population == 0 {
		p.Population = 40
	}
	if p.Generations == 0 {
		p.Generations = 80
	}
	if p.CrossoverRate == 0 {
		p.CrossoverRate = 0.8
	}
	if p.MutationRate == 0 {
		p.MutationRate = 0.15
	}
	if p.MinMutationRate == 0 {
		p.MinMutationRate = 0.02
	}
	if p.Tournament == 0 {
		p.Tournament = 3
	}
	if p.StallWindow == 0 {
		p.StallWindow = 25
	}
	if p.StallEpsilon == 0 {
		p.StallEpsilon = 1e-3
	}
	if p.PositionStep == 0 {
		p.PositionStep = 20
	}
	if p.HeadingStep == 0 {
		p.HeadingStep = 10
	}
	if p.InitJitter == 0 {
		p.InitJitter = 40
	}
	if p.SampleStep == 0 {
		p.SampleStep = 10
	}
	w := &p.Weights
	if *w == (Weights{}) {
		*w = Weights{Length: 1, Heading: 2, Collision: 1e5, Final: 10}
	}
}
