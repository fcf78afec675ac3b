package entity

import (
	"errors"
	"fmt"
)

// ErrCollision 车辆与障碍物或场景边界发生碰撞，本次Episode失败
var ErrCollision = errors.New("vehicle collided")

// ConfigurationError 场景、车辆或规划器参数不合法
// 说明：在Episode开始前返回，调用方可通过errors.As获取出错字段
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
