package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/autopark-sim/utils/randengine"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := randengine.New(7), randengine.New(7)
	for range 100 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(13), b.Intn(13))
	}
}

func TestDifferentSeedDifferentSequence(t *testing.T) {
	a, b := randengine.New(3), randengine.New(4)
	assert.NotEqual(t,
		[]float64{a.Float64(), a.Float64(), a.Float64()},
		[]float64{b.Float64(), b.Float64(), b.Float64()})
}

func TestUniform(t *testing.T) {
	e := randengine.New(1)
	for range 1000 {
		v := e.Uniform(-2, 5)
		assert.GreaterOrEqual(t, v, -2.)
		assert.Less(t, v, 5.)
		j := e.Jitter(3)
		assert.GreaterOrEqual(t, j, -3.)
		assert.Less(t, j, 3.)
	}
	assert.False(t, e.PTrue(0))
	assert.True(t, e.PTrue(1))
}
