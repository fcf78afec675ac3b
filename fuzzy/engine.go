package fuzzy

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Clause 规则中的一个“变量 is 语言值”子句
type Clause struct {
	Variable string
	Term     string
}

func (c Clause) String() string {
	return c.Variable + " is " + c.Term
}

// Rule 一条Mamdani规则：前件全部为AND关系，后件可同时作用于多个输出变量
type Rule struct {
	If   []Clause
	Then []Clause
}

func (r Rule) String() string {
	ifs := lo.Map(r.If, func(c Clause, _ int) string { return c.String() })
	thens := lo.Map(r.Then, func(c Clause, _ int) string { return c.String() })
	return "IF " + strings.Join(ifs, " AND ") + " THEN " + strings.Join(thens, ", ")
}

type compiledClause struct {
	variable int
	term     int
}

type compiledRule struct {
	ifs   []compiledClause
	thens []compiledClause
}

// Engine Mamdani模糊推理引擎
// 功能：规则库在构造时编译并校验，推理过程无状态、可并发调用
// 说明：AND取min，蕴含取min，聚合取max，重心法解模糊；聚合结果全为0时输出0
type Engine struct {
	inputs  []Variable
	outputs []Variable
	rules   []Rule

	compiled []compiledRule
	universe [][]float64   // 每个输出变量的离散论域
	samples  [][][]float64 // 每个输出变量每个语言值在离散论域上的隶属度
}

// NewEngine 创建推理引擎
// 功能：校验变量定义，把规则中的名字解析为下标
// 参数：inputs-输入变量，outputs-输出变量，rules-规则库
// 返回：引擎指针；任何子句引用了未声明的变量或语言值时返回错误
func NewEngine(inputs, outputs []Variable, rules []Rule) (*Engine, error) {
	e := &Engine{inputs: inputs, outputs: outputs, rules: rules}
	names := make(map[string]struct{})
	for _, v := range inputs {
		if err := v.validate(false); err != nil {
			return nil, err
		}
		if _, ok := names[v.Name]; ok {
			return nil, fmt.Errorf("duplicated variable %s", v.Name)
		}
		names[v.Name] = struct{}{}
	}
	for _, v := range outputs {
		if err := v.validate(true); err != nil {
			return nil, err
		}
		if _, ok := names[v.Name]; ok {
			return nil, fmt.Errorf("duplicated variable %s", v.Name)
		}
		names[v.Name] = struct{}{}
		xs := make([]float64, v.Samples)
		floats.Span(xs, v.Min, v.Max)
		e.universe = append(e.universe, xs)
		e.samples = append(e.samples, lo.Map(v.Terms, func(t Term, _ int) []float64 {
			return lo.Map(xs, func(x float64, _ int) float64 { return t.MF.Degree(x) })
		}))
	}
	for i, r := range rules {
		if len(r.If) == 0 || len(r.Then) == 0 {
			return nil, fmt.Errorf("rule %d: needs at least one antecedent and one consequent", i)
		}
		var cr compiledRule
		for _, c := range r.If {
			cc, err := resolve(inputs, c)
			if err != nil {
				return nil, fmt.Errorf("rule %d antecedent: %w", i, err)
			}
			cr.ifs = append(cr.ifs, cc)
		}
		for _, c := range r.Then {
			cc, err := resolve(outputs, c)
			if err != nil {
				return nil, fmt.Errorf("rule %d consequent: %w", i, err)
			}
			cr.thens = append(cr.thens, cc)
		}
		e.compiled = append(e.compiled, cr)
	}
	return e, nil
}

func resolve(vars []Variable, c Clause) (compiledClause, error) {
	_, vi, ok := lo.FindIndexOf(vars, func(v Variable) bool { return v.Name == c.Variable })
	if !ok {
		return compiledClause{}, fmt.Errorf("unknown variable %s", c.Variable)
	}
	ti, ok := vars[vi].termIndex(c.Term)
	if !ok {
		return compiledClause{}, fmt.Errorf("variable %s has no term %s", c.Variable, c.Term)
	}
	return compiledClause{variable: vi, term: ti}, nil
}

func (e *Engine) Inputs() []Variable  { return e.inputs }
func (e *Engine) Outputs() []Variable { return e.outputs }
func (e *Engine) Rules() []Rule       { return e.rules }

// Result 一次推理的结果
type Result struct {
	Outputs   map[string]float64 // 各输出变量的精确值
	Strengths []float64          // 各规则的激活强度，下标与规则库一致
}

// Infer 执行一次Mamdani推理
// 功能：模糊化、规则评估、聚合与解模糊
// 参数：crisp-各输入变量的精确值，必须包含全部输入变量
// 返回：推理结果；缺少输入时返回错误
// 算法说明：
// 1. 模糊化：输入裁剪到论域后计算各语言值隶属度
// 2. 规则强度：前件隶属度取min
// 3. 蕴含与聚合：在离散论域上对后件隶属度按强度削顶（min），多条规则取max
// 4. 解模糊：离散重心 Σμ(x)·x / Σμ(x)，分母为0时输出0
func (e *Engine) Infer(crisp map[string]float64) (Result, error) {
	mu := make([][]float64, len(e.inputs))
	for i, v := range e.inputs {
		x, ok := crisp[v.Name]
		if !ok {
			return Result{}, fmt.Errorf("missing input %s", v.Name)
		}
		mu[i] = v.Fuzzify(x)
	}
	res := Result{
		Outputs:   make(map[string]float64, len(e.outputs)),
		Strengths: make([]float64, len(e.compiled)),
	}
	aggregated := lo.Map(e.universe, func(xs []float64, _ int) []float64 {
		return make([]float64, len(xs))
	})
	for ri, r := range e.compiled {
		w := 1.
		for _, c := range r.ifs {
			w = min(w, mu[c.variable][c.term])
		}
		res.Strengths[ri] = w
		if w <= 0 {
			continue
		}
		for _, c := range r.thens {
			agg := aggregated[c.variable]
			for k, m := range e.samples[c.variable][c.term] {
				agg[k] = max(agg[k], min(w, m))
			}
		}
	}
	for oi, v := range e.outputs {
		agg := aggregated[oi]
		if s := floats.Sum(agg); s > 0 {
			res.Outputs[v.Name] = floats.Dot(agg, e.universe[oi]) / s
		} else {
			res.Outputs[v.Name] = 0
		}
	}
	return res, nil
}
