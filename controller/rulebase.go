package controller

import "github.com/tsinghua-fib-lab/autopark-sim/fuzzy"

// 输入输出变量名
const (
	Frontal  = "frontal_distance"
	Lateral  = "lateral_offset"
	Angle    = "vehicle_angle"
	Depth    = "penetration_depth"
	Steering = "steering"
	Speed    = "speed"
)

type tri = fuzzy.Triangle
type trap = fuzzy.Trapezoid

// Inputs 四路传感器对应的输入语言变量
// 说明：横向与角度的“居中”语言值与两侧语言值在0附近重叠，避免出现无规则激活的死区
func Inputs() []fuzzy.Variable {
	return []fuzzy.Variable{
		{Name: Frontal, Min: 0, Max: 200, Terms: []fuzzy.Term{
			{Name: "muito_perto", MF: trap{A: 0, B: 0, C: 5, D: 10}},
			{Name: "perto", MF: tri{A: 8, B: 25, C: 50}},
			{Name: "medio", MF: tri{A: 40, B: 100, C: 160}},
			{Name: "longe", MF: trap{A: 140, B: 180, C: 200, D: 200}},
		}},
		{Name: Lateral, Min: -80, Max: 80, Terms: []fuzzy.Term{
			{Name: "muito_acima", MF: trap{A: -80, B: -80, C: -40, D: -20}},
			{Name: "acima", MF: tri{A: -40, B: -20, C: 0}},
			{Name: "centrado", MF: tri{A: -10, B: 0, C: 10}},
			{Name: "abaixo", MF: tri{A: 0, B: 20, C: 40}},
			{Name: "muito_abaixo", MF: trap{A: 20, B: 40, C: 80, D: 80}},
		}},
		{Name: Angle, Min: -90, Max: 90, Terms: []fuzzy.Term{
			{Name: "esquerda", MF: trap{A: -90, B: -90, C: -30, D: 0}},
			{Name: "alinhado", MF: tri{A: -10, B: 0, C: 10}},
			{Name: "direita", MF: trap{A: 0, B: 30, C: 90, D: 90}},
		}},
		{Name: Depth, Min: 0, Max: 150, Terms: []fuzzy.Term{
			{Name: "entrada", MF: trap{A: 0, B: 0, C: 20, D: 40}},
			{Name: "aproximando", MF: tri{A: 20, B: 45, C: 70}},
			{Name: "centro", MF: tri{A: 55, B: 75, C: 85}},
			{Name: "fundo", MF: trap{A: 70, B: 100, C: 150, D: 150}},
		}},
	}
}

// Outputs 转向与速度输出变量
func Outputs() []fuzzy.Variable {
	return []fuzzy.Variable{
		{Name: Steering, Min: -40, Max: 40, Samples: 81, Terms: []fuzzy.Term{
			{Name: "forte_esquerda", MF: trap{A: -40, B: -40, C: -30, D: -20}},
			{Name: "esquerda", MF: tri{A: -25, B: -15, C: -5}},
			{Name: "reto", MF: tri{A: -5, B: 0, C: 5}},
			{Name: "direita", MF: tri{A: 5, B: 15, C: 25}},
			{Name: "forte_direita", MF: trap{A: 20, B: 30, C: 40, D: 40}},
		}},
		{Name: Speed, Min: 0, Max: 10, Samples: 101, Terms: []fuzzy.Term{
			{Name: "parado", MF: trap{A: 0, B: 0, C: 0.2, D: 0.6}},
			{Name: "muito_lento", MF: tri{A: 0.4, B: 1, C: 2}},
			{Name: "lento", MF: tri{A: 1.5, B: 3, C: 4.5}},
			{Name: "medio", MF: tri{A: 4, B: 5.5, C: 7}},
			{Name: "rapido", MF: trap{A: 6.5, B: 8.5, C: 10, D: 10}},
		}},
	}
}

func when(variable, term string) []fuzzy.Clause {
	return []fuzzy.Clause{{Variable: variable, Term: term}}
}

func then(pairs ...string) []fuzzy.Clause {
	res := make([]fuzzy.Clause, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		res = append(res, fuzzy.Clause{Variable: pairs[i], Term: pairs[i+1]})
	}
	return res
}

// Rules 13条泊车规则
// 说明：转向为正表示向右（屏幕坐标系下航向增大）；横向与角度规则成对出现，互为镜像
func Rules() []fuzzy.Rule {
	return []fuzzy.Rule{
		// 进入深度
		{If: when(Depth, "centro"), Then: then(Speed, "parado", Steering, "reto")},
		{If: when(Depth, "aproximando"), Then: then(Speed, "lento", Steering, "reto")},
		{If: when(Depth, "entrada"), Then: then(Speed, "medio", Steering, "reto")},
		{If: when(Depth, "fundo"), Then: then(Speed, "muito_lento", Steering, "reto")},
		// 前方距离
		{If: when(Frontal, "muito_perto"), Then: then(Speed, "parado", Steering, "reto")},
		{If: when(Frontal, "perto"), Then: then(Speed, "muito_lento")},
		{If: when(Frontal, "longe"), Then: then(Speed, "rapido", Steering, "reto")},
		// 航向修正
		{If: when(Angle, "esquerda"), Then: then(Steering, "forte_direita", Speed, "lento")},
		{If: when(Angle, "direita"), Then: then(Steering, "forte_esquerda", Speed, "lento")},
		// 横向修正
		{If: when(Lateral, "muito_abaixo"), Then: then(Steering, "forte_esquerda", Speed, "lento")},
		{If: when(Lateral, "abaixo"), Then: then(Steering, "esquerda", Speed, "lento")},
		{If: when(Lateral, "acima"), Then: then(Steering, "direita", Speed, "lento")},
		{If: when(Lateral, "muito_acima"), Then: then(Steering, "forte_direita", Speed, "lento")},
	}
}
