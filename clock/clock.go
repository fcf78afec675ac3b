package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
)

// Clock 仿真时钟
// 功能：管理一次Episode的步数推进与超时判定
// 说明：模拟区间为[START_STEP, END_STEP)，到达END_STEP后Episode以超时结束
type Clock struct {
	DT         float64 // 每步时间间隔
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步

	T            float64 // 当前时间
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，包含时间间隔、起始步与总步数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Next 推进一步
func (c *Clock) Next() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// Elapsed 自起始步以来已经推进的步数
func (c *Clock) Elapsed() int32 {
	return c.InternalStep - c.START_STEP
}

// String 获取时钟的字符串表示（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
