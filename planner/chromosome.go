package planner

import (
	"slices"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

// Chromosome 候选轨迹
// 说明：Genes为起点之后的有序航点，最后一个基因即规划的终点位姿
type Chromosome struct {
	Genes   []entity.Pose
	Fitness float64
}

func (c Chromosome) Clone() Chromosome {
	return Chromosome{Genes: slices.Clone(c.Genes), Fitness: c.Fitness}
}

// bounds 基因取值范围
type bounds struct {
	world entity.Rect
}

// clamp 把航点限制在场景范围内，航向规约到[-180, 180)
func (b bounds) clamp(p entity.Pose) entity.Pose {
	if b.world.Width > 0 && b.world.Height > 0 {
		p.X = lo.Clamp(p.X, b.world.X, b.world.X+b.world.Width)
		p.Y = lo.Clamp(p.Y, b.world.Y, b.world.Y+b.world.Height)
	}
	p.Heading = utils.WrapAngle(p.Heading)
	return p
}

// randomChromosome 生成初始个体
// 功能：在起点到目标的连线上等分取点并加入随机扰动
// 参数：n-航点数，start/goal-起终点，jitter-位置扰动幅度，rng-随机数引擎
// 算法说明：
// 1. 第i个航点的基准位置为连线上(i+1)/n处
// 2. 中间航点位置扰动±jitter，终点扰动±jitter/4
// 3. 航向在±30度内随机
func randomChromosome(n int, start, goal entity.Pose, jitter float64, b bounds, rng *randengine.Engine) Chromosome {
	genes := make([]entity.Pose, n)
	for i := range genes {
		k := float64(i+1) / float64(n)
		base := geometry.Blend(start.Point(), goal.Point(), k)
		amp := jitter
		if i == n-1 {
			amp = jitter / 4
		}
		genes[i] = b.clamp(entity.Pose{
			X:       base.X + rng.Jitter(amp),
			Y:       base.Y + rng.Jitter(amp),
			Heading: rng.Jitter(30),
		})
	}
	return Chromosome{Genes: genes}
}
