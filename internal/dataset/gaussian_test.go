package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flintml/flint/internal/backend/cpu"
	"github.com/flintml/flint/internal/dataset"
	"github.com/flintml/flint/internal/tensor"
)

func TestGaussianDeterministic(t *testing.T) {
	cfg := dataset.GaussianConfig{NumSamples: 30, NumFeatures: 2, NumClasses: 3, Seed: 42}

	a := dataset.Gaussian(cfg)
	b := dataset.Gaussian(cfg)
	require.Len(t, a, 30)
	assert.Equal(t, a, b, "same seed must produce the same samples")

	cfg.Seed = 43
	c := dataset.Gaussian(cfg)
	assert.NotEqual(t, a, c, "different seeds must produce different samples")
}

func TestGaussianLabelsAndClustering(t *testing.T) {
	cfg := dataset.GaussianConfig{
		NumSamples:  300,
		NumFeatures: 2,
		NumClasses:  2,
		Spread:      0.1,
		Distance:    3,
		Seed:        1,
	}
	samples := dataset.Gaussian(cfg)

	counts := map[int32]int{}
	for _, s := range samples {
		counts[s.Label]++
		require.Len(t, s.Features, 2)

		// Class 0 clusters near (3, 0), class 1 near (0, 3).
		if s.Label == 0 {
			assert.InDelta(t, 3.0, float64(s.Features[0]), 1.0)
		} else {
			assert.InDelta(t, 3.0, float64(s.Features[1]), 1.0)
		}
	}
	assert.Equal(t, 150, counts[0])
	assert.Equal(t, 150, counts[1])
}

func TestLoaderBatchShapes(t *testing.T) {
	backend := cpu.New()
	samples := dataset.Gaussian(dataset.GaussianConfig{NumSamples: 10, NumFeatures: 3, NumClasses: 2, Seed: 7})
	loader := dataset.NewLoader(samples, 4, 0, backend)

	// 10 samples / batch 4 = 2 full batches, short batch dropped.
	assert.Equal(t, 2, loader.NumBatches())

	batch := loader.Batch(0)
	assert.Equal(t, tensor.Shape{4, 3}, batch.Inputs.Shape())
	assert.Equal(t, tensor.Shape{4}, batch.Targets.Shape())

	// Before any shuffle, batch 0 holds samples 0..3 in order.
	for row := 0; row < 4; row++ {
		assert.Equal(t, samples[row].Label, batch.Targets.Data()[row])
		for j := 0; j < 3; j++ {
			assert.Equal(t, samples[row].Features[j], batch.Inputs.Data()[row*3+j])
		}
	}
}

func TestLoaderShuffleDeterministic(t *testing.T) {
	backend := cpu.New()
	samples := dataset.Gaussian(dataset.GaussianConfig{NumSamples: 64, NumFeatures: 2, NumClasses: 2, Seed: 3})

	a := dataset.NewLoader(samples, 8, 11, backend)
	b := dataset.NewLoader(samples, 8, 11, backend)
	a.Shuffle()
	b.Shuffle()

	assert.Equal(t, a.Batch(0).Inputs.Data(), b.Batch(0).Inputs.Data())
	assert.Equal(t, a.Batch(0).Targets.Data(), b.Batch(0).Targets.Data())
}

func TestLoaderShuffleReorders(t *testing.T) {
	backend := cpu.New()
	samples := dataset.Gaussian(dataset.GaussianConfig{NumSamples: 64, NumFeatures: 2, NumClasses: 2, Seed: 3})
	loader := dataset.NewLoader(samples, 64, 5, backend)

	before := append([]int32(nil), loader.Batch(0).Targets.Data()...)
	loader.Shuffle()
	after := loader.Batch(0).Targets.Data()

	assert.NotEqual(t, before, after)
}

func TestLoaderRejectsInvalidConfig(t *testing.T) {
	backend := cpu.New()
	samples := dataset.Gaussian(dataset.GaussianConfig{NumSamples: 4, NumFeatures: 1, NumClasses: 2, Seed: 0})

	assert.Panics(t, func() { dataset.NewLoader([]dataset.Sample{}, 1, 0, backend) })
	assert.Panics(t, func() { dataset.NewLoader(samples, 0, 0, backend) })
	assert.Panics(t, func() { dataset.NewLoader(samples, 5, 0, backend) })
}

func TestLoaderBatchIndexOutOfRange(t *testing.T) {
	backend := cpu.New()
	samples := dataset.Gaussian(dataset.GaussianConfig{NumSamples: 8, NumFeatures: 1, NumClasses: 2, Seed: 0})
	loader := dataset.NewLoader(samples, 4, 0, backend)

	defer func() {
		err := tensor.AsError(recover())
		require.Error(t, err)
		var idxErr *tensor.IndexError
		assert.ErrorAs(t, err, &idxErr)
		assert.Equal(t, 2, idxErr.Index)
		assert.Equal(t, 2, idxErr.Bound)
	}()
	loader.Batch(2)
}
