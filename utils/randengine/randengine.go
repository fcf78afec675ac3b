// 随机数引擎，包装了golang.org/x/exp/rand，规划器的全部随机性都经由它注入
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于在不改配置的情况下调整随机数序列
)

// Engine 随机数引擎
// 说明：不加锁，只能在单个goroutine中使用；需要复现时用相同种子重新New
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子（会叠加命令行的rand.seed_offset）
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform 在[lo, hi)内均匀采样
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Float64()
}

// Jitter 在[-amp, amp)内均匀采样
func (e *Engine) Jitter(amp float64) float64 {
	return e.Uniform(-amp, amp)
}
