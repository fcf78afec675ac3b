package planner

import (
	"slices"

	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

// tournament 锦标赛选择：随机抽取k个个体（可重复），返回适应度最小者
func tournament(pop []Chromosome, k int, rng *randengine.Engine) Chromosome {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < k; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.Fitness < best.Fitness {
			best = c
		}
	}
	return best
}

// crossover 单点交叉，切点取[1, n-1]，n<2时直接复制父代
func crossover(a, b Chromosome, rng *randengine.Engine) (Chromosome, Chromosome) {
	n := len(a.Genes)
	if n < 2 {
		return a.Clone(), b.Clone()
	}
	cut := 1 + rng.Intn(n-1)
	c1 := slices.Concat(a.Genes[:cut], b.Genes[cut:])
	c2 := slices.Concat(b.Genes[:cut], a.Genes[cut:])
	return Chromosome{Genes: c1}, Chromosome{Genes: c2}
}

// mutate 逐基因变异
// 说明：每个基因以rate的概率在位置上叠加±posStep、航向上叠加±headingStep的均匀扰动，结果限制在场景范围内
func mutate(c *Chromosome, rate, posStep, headingStep float64, b bounds, rng *randengine.Engine) {
	for i, g := range c.Genes {
		if !rng.PTrue(rate) {
			continue
		}
		c.Genes[i] = b.clamp(entity.Pose{
			X:       g.X + rng.Jitter(posStep),
			Y:       g.Y + rng.Jitter(posStep),
			Heading: g.Heading + rng.Jitter(headingStep),
		})
	}
}

// mutationRate 随代数线性退火的变异概率
func mutationRate(p0, pMin float64, generation, total int) float64 {
	return p0*(1-float64(generation)/float64(total)) + pMin
}
