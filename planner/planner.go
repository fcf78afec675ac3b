package planner

import (
	"context"
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/config"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
	"gonum.org/v1/gonum/stat"
)

// Planner 遗传算法轨迹规划器
// 功能：在连续位姿序列空间中搜索低代价、无碰撞的泊车参考轨迹
// 说明：全部随机性来自注入的随机数引擎；适应度评估并行执行，其余步骤串行以保证可复现
type Planner struct {
	cfg config.Planner
	rng *randengine.Engine
}

// New 创建规划器
// 参数：cfg-规划器配置（应已填充默认值），rng-随机数引擎
// 返回：规划器指针；配置不合法时返回*entity.ConfigurationError
func New(cfg config.Planner, rng *randengine.Engine) (*Planner, error) {
	checks := []struct {
		ok    bool
		field string
		why   string
	}{
		{cfg.Waypoints >= 1, "planner.waypoints", "must be at least 1"},
		{cfg.Population >= 2, "planner.population", "must be at least 2"},
		{cfg.Generations >= 1, "planner.generations", "must be at least 1"},
		{cfg.Tournament >= 1, "planner.tournament", "must be at least 1"},
		{cfg.CrossoverRate >= 0 && cfg.CrossoverRate <= 1, "planner.crossover_rate", "must be within [0, 1]"},
		{cfg.MutationRate >= 0 && cfg.MutationRate+cfg.MinMutationRate <= 1, "planner.mutation_rate", "mutation_rate + min_mutation_rate must be within [0, 1]"},
		{cfg.MinMutationRate >= 0, "planner.min_mutation_rate", "must not be negative"},
		{cfg.StallWindow >= 1, "planner.stall_window", "must be at least 1"},
	}
	for _, c := range checks {
		if !c.ok {
			return nil, &entity.ConfigurationError{Field: c.field, Reason: c.why}
		}
	}
	if rng == nil {
		rng = randengine.New(cfg.Seed)
	}
	return &Planner{cfg: cfg, rng: rng}, nil
}

// Plan 规划从start到车位理想位姿的参考航点序列，实现entity.IPlanner
// 功能：遗传算法主循环
// 参数：ctx-取消信号，start-起始位姿，scene-场景，spec-车辆参数
// 返回：规划结果（航点数固定为配置值）；场景不合法时返回错误
// 算法说明：
// 1. 初始化：沿起终点连线扰动生成种群
// 2. 评估：并行计算每个个体的适应度，更新历史最优（精英）
// 3. 终止：达到代数上限，或连续stall_window代改进不超过stall_epsilon，或ctx被取消（每代评估完成后检查，至少完成一代）
// 4. 繁殖：精英直接进入下一代；其余个体由锦标赛选择、单点交叉、退火变异产生
// 说明：找不到无碰撞轨迹时仍返回代价最小的个体，Feasible为false
func (p *Planner) Plan(ctx context.Context, start entity.Pose, scene entity.Scene, spec entity.VehicleSpec) (entity.PlanResult, error) {
	if err := scene.Validate(); err != nil {
		return entity.PlanResult{}, err
	}
	if err := spec.Validate(); err != nil {
		return entity.PlanResult{}, err
	}
	cfg := p.cfg
	eval := Evaluator{
		Start:      start,
		Goal:       scene.Goal(),
		Scene:      scene,
		Spec:       spec,
		Weights:    cfg.Weights,
		SampleStep: cfg.SampleStep,
	}
	b := bounds{world: scene.World}

	pop := make([]Chromosome, cfg.Population)
	for i := range pop {
		pop[i] = randomChromosome(cfg.Waypoints, start, eval.Goal, cfg.InitJitter, b, p.rng)
	}

	var best Chromosome
	bestFitness := mathutil.INF
	stall := 0
	res := entity.PlanResult{}
	for g := 0; g < cfg.Generations; g++ {
		fitness := parallel.GoMap(pop, func(c Chromosome) float64 {
			return eval.Fitness(c.Genes)
		})
		for i := range pop {
			pop[i].Fitness = fitness[i]
		}
		elite := lo.MinBy(pop, func(a, b Chromosome) bool { return a.Fitness < b.Fitness })
		if elite.Fitness < bestFitness-cfg.StallEpsilon {
			stall = 0
		} else {
			stall++
		}
		if elite.Fitness < bestFitness {
			bestFitness = elite.Fitness
			best = elite.Clone()
		}
		mean, std := stat.MeanStdDev(fitness, nil)
		if math.IsNaN(std) {
			std = 0
		}
		res.History = append(res.History, entity.GenerationStat{
			Generation: g,
			Best:       bestFitness,
			Mean:       mean,
			StdDev:     std,
		})
		log.Debugf("generation %d: best %.2f mean %.2f", g, bestFitness, mean)
		if stall >= cfg.StallWindow {
			log.Debugf("stalled for %d generations", stall)
			break
		}
		if g == cfg.Generations-1 {
			break
		}
		if ctx.Err() != nil {
			res.Cancelled = true
			log.Infof("planning cancelled after generation %d", g)
			break
		}

		rate := mutationRate(cfg.MutationRate, cfg.MinMutationRate, g, cfg.Generations)
		next := make([]Chromosome, 0, cfg.Population+1)
		next = append(next, best.Clone())
		for len(next) < cfg.Population {
			pa := tournament(pop, cfg.Tournament, p.rng)
			pb := tournament(pop, cfg.Tournament, p.rng)
			var c1, c2 Chromosome
			if p.rng.PTrue(cfg.CrossoverRate) {
				c1, c2 = crossover(pa, pb, p.rng)
			} else {
				c1, c2 = pa.Clone(), pb.Clone()
			}
			mutate(&c1, rate, cfg.PositionStep, cfg.HeadingStep, b, p.rng)
			mutate(&c2, rate, cfg.PositionStep, cfg.HeadingStep, b, p.rng)
			next = append(next, c1, c2)
		}
		pop = next[:cfg.Population]
	}

	cost := eval.Cost(best.Genes)
	res.Waypoints = best.Genes
	res.BestFitness = bestFitness
	res.Feasible = cost.Collisions == 0
	res.Generations = len(res.History)
	if !res.Feasible {
		log.Warnf("no collision-free path found, returning least-bad candidate with %d colliding segments", cost.Collisions)
	}
	log.Infof("planned %d waypoints in %d generations, fitness %.2f (length %.1f, effort %.1f, deviation %.2f)",
		len(res.Waypoints), res.Generations, bestFitness, cost.Length, cost.Effort, cost.Deviation)
	return res, nil
}

func (p *Planner) String() string {
	return fmt.Sprintf("Planner{waypoints=%d, population=%d, generations=%d}", p.cfg.Waypoints, p.cfg.Population, p.cfg.Generations)
}
