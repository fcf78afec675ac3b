package entity

import (
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

type ITaskContext interface {
	RuntimeConfig() *config.RuntimeConfig
	Scene() Scene
	VehicleSpec() VehicleSpec
	Controller() IController
	// 为一次规划创建规划器，seed用于保证可复现
	NewPlanner(seed uint64) IPlanner
}
