package utils

import "math"

// 角度工具，单位均为度

// Radians 度转弧度
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees 弧度转度
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapAngle 将角度规约到[-180, 180)
func WrapAngle(deg float64) float64 {
	a := math.Mod(deg+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

// ReduceAngle 将角度按180度周期规约到[-90, 90]
// 说明：车头朝向与车尾朝向视为同一条停车方向
func ReduceAngle(deg float64) float64 {
	a := WrapAngle(deg)
	if a > 90 {
		a -= 180
	} else if a < -90 {
		a += 180
	}
	return a
}

// AngleDiff a-b规约到[-180, 180)
func AngleDiff(a, b float64) float64 {
	return WrapAngle(a - b)
}
