package fuzzy

import "fmt"

// MembershipFunc 隶属度函数
type MembershipFunc interface {
	// Degree 返回x的隶属度，取值[0, 1]
	Degree(x float64) float64
	validate() error
}

// Triangle 三角形隶属度函数，顶点为B
type Triangle struct {
	A, B, C float64
}

func (t Triangle) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	case x == t.B:
		return 1
	case t.C == t.B:
		return 1
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

func (t Triangle) validate() error {
	if !(t.A <= t.B && t.B <= t.C) || t.A == t.C {
		return fmt.Errorf("triangle(%v, %v, %v) must satisfy a <= b <= c and a < c", t.A, t.B, t.C)
	}
	return nil
}

// Trapezoid 梯形隶属度函数，[B, C]区间隶属度为1
// 说明：A==B或C==D时为肩形函数，用于论域两端的语言值
type Trapezoid struct {
	A, B, C, D float64
}

func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	case x <= t.C:
		return 1
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

func (t Trapezoid) validate() error {
	if !(t.A <= t.B && t.B <= t.C && t.C <= t.D) || t.A == t.D {
		return fmt.Errorf("trapezoid(%v, %v, %v, %v) must satisfy a <= b <= c <= d and a < d", t.A, t.B, t.C, t.D)
	}
	return nil
}
