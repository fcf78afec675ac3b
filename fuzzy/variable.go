package fuzzy

import (
	"fmt"

	"github.com/samber/lo"
)

// Term 语言值
type Term struct {
	Name string
	MF   MembershipFunc
}

// Variable 语言变量
// 功能：定义一个输入或输出变量的论域与语言值
// 说明：输入变量在模糊化时将精确值裁剪到[Min, Max]；输出变量按Samples个等距点离散化论域用于重心法解模糊
type Variable struct {
	Name    string
	Min     float64
	Max     float64
	Terms   []Term
	Samples int // 仅输出变量使用
}

// Fuzzify 计算精确值x对各语言值的隶属度，顺序与Terms一致
func (v Variable) Fuzzify(x float64) []float64 {
	x = lo.Clamp(x, v.Min, v.Max)
	return lo.Map(v.Terms, func(t Term, _ int) float64 {
		return t.MF.Degree(x)
	})
}

func (v Variable) termIndex(name string) (int, bool) {
	_, i, ok := lo.FindIndexOf(v.Terms, func(t Term) bool { return t.Name == name })
	return i, ok
}

func (v Variable) validate(output bool) error {
	if v.Name == "" {
		return fmt.Errorf("variable name is empty")
	}
	if v.Min >= v.Max {
		return fmt.Errorf("variable %s: min %v must be less than max %v", v.Name, v.Min, v.Max)
	}
	if len(v.Terms) == 0 {
		return fmt.Errorf("variable %s has no terms", v.Name)
	}
	if output && v.Samples < 2 {
		return fmt.Errorf("output variable %s needs at least 2 samples, got %d", v.Name, v.Samples)
	}
	seen := make(map[string]struct{}, len(v.Terms))
	for _, t := range v.Terms {
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("variable %s: duplicated term %s", v.Name, t.Name)
		}
		seen[t.Name] = struct{}{}
		if t.MF == nil {
			return fmt.Errorf("variable %s: term %s has no membership function", v.Name, t.Name)
		}
		if err := t.MF.validate(); err != nil {
			return fmt.Errorf("variable %s: term %s: %w", v.Name, t.Name, err)
		}
	}
	return nil
}
