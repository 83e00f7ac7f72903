package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCoversEveryIndexOnce(t *testing.T) {
	cfg := Config{Workers: 4, Threshold: 1}

	hits := make([]int32, 1000)
	For(len(hits), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestForRunsInlineBelowThreshold(t *testing.T) {
	cfg := Config{Workers: 8, Threshold: 100}

	calls := 0
	For(10, func(lo, hi int) {
		calls++
		assert.Equal(t, 0, lo)
		assert.Equal(t, 10, hi)
	}, cfg)
	assert.Equal(t, 1, calls, "small loops run as a single inline range")
}

func TestForSingleWorker(t *testing.T) {
	cfg := Config{Workers: 1, Threshold: 1}

	sum := 0
	For(100, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			sum += i
		}
	}, cfg)
	assert.Equal(t, 4950, sum)
}

func TestForZeroItems(t *testing.T) {
	called := false
	For(0, func(lo, hi int) {
		called = lo != hi
	}, DefaultConfig())
	assert.False(t, called)
}
