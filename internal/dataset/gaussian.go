// Package dataset provides synthetic data for training and testing
// Flint classifiers.
//
// The Gaussian generator draws each class as a cluster around a fixed
// center, which gives a linearly separable problem when the spread is
// small relative to the center distance. Generation is fully seeded,
// so the same config always produces the same samples.
package dataset

import (
	"math/rand"

	"github.com/flintml/flint/internal/tensor"
	"github.com/flintml/flint/internal/train"
)

// GaussianConfig describes a synthetic classification dataset.
type GaussianConfig struct {
	NumSamples  int     // total samples across all classes
	NumFeatures int     // dimensionality of each sample
	NumClasses  int     // number of clusters
	Spread      float64 // cluster standard deviation, default 0.5
	Distance    float64 // distance of each center from the origin, default 2
	Seed        int64
}

// Sample is one labeled data point.
type Sample struct {
	Features []float32
	Label    int32
}

// Gaussian generates cfg.NumSamples labeled points from a Gaussian
// mixture with one cluster per class. Class i's center places
// cfg.Distance in coordinate i%NumFeatures, alternating sign every
// wrap so centers stay distinct when classes outnumber features.
func Gaussian(cfg GaussianConfig) []Sample {
	if cfg.Spread == 0 {
		cfg.Spread = 0.5
	}
	if cfg.Distance == 0 {
		cfg.Distance = 2
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	centers := make([][]float64, cfg.NumClasses)
	for c := range centers {
		center := make([]float64, cfg.NumFeatures)
		axis := c % cfg.NumFeatures
		sign := 1.0
		if (c/cfg.NumFeatures)%2 == 1 {
			sign = -1.0
		}
		center[axis] = sign * cfg.Distance
		centers[c] = center
	}

	samples := make([]Sample, cfg.NumSamples)
	for i := range samples {
		class := i % cfg.NumClasses
		features := make([]float32, cfg.NumFeatures)
		for j := range features {
			features[j] = float32(centers[class][j] + rng.NormFloat64()*cfg.Spread)
		}
		samples[i] = Sample{Features: features, Label: int32(class)}
	}
	return samples
}

// Loader serves samples as mini-batch tensors. It implements the
// training loop's data source contract: batches are visited by index
// within an epoch, and Shuffle reorders samples between epochs using
// the loader's own seeded RNG.
type Loader[B tensor.Backend] struct {
	samples     []Sample
	order       []int
	batchSize   int
	numFeatures int
	backend     B
	rng         *rand.Rand
}

// NewLoader creates a Loader over samples. The final short batch is
// dropped so every batch has exactly batchSize rows.
func NewLoader[B tensor.Backend](samples []Sample, batchSize int, seed int64, backend B) *Loader[B] {
	if len(samples) == 0 {
		panic(tensor.Statef("loader", "no samples"))
	}
	if batchSize <= 0 || batchSize > len(samples) {
		panic(tensor.Statef("loader", "batch size %d invalid for %d samples", batchSize, len(samples)))
	}

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	return &Loader[B]{
		samples:     samples,
		order:       order,
		batchSize:   batchSize,
		numFeatures: len(samples[0].Features),
		backend:     backend,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// NumBatches returns the number of full batches per epoch.
func (l *Loader[B]) NumBatches() int {
	return len(l.samples) / l.batchSize
}

// Shuffle reorders the samples for the next epoch.
func (l *Loader[B]) Shuffle() {
	l.rng.Shuffle(len(l.order), func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
}

// Batch materializes batch i as a [batchSize, numFeatures] float32
// input tensor paired with [batchSize] int32 labels.
func (l *Loader[B]) Batch(i int) train.Batch[B] {
	if i < 0 || i >= l.NumBatches() {
		panic(&tensor.IndexError{Op: "loader", Index: i, Bound: l.NumBatches()})
	}

	inputs, err := tensor.NewRaw(tensor.Shape{l.batchSize, l.numFeatures}, tensor.Float32, l.backend.Device())
	if err != nil {
		panic(err)
	}
	targets, err := tensor.NewRaw(tensor.Shape{l.batchSize}, tensor.Int32, l.backend.Device())
	if err != nil {
		panic(err)
	}

	in := inputs.AsFloat32()
	labels := targets.AsInt32()
	for row := 0; row < l.batchSize; row++ {
		sample := l.samples[l.order[i*l.batchSize+row]]
		copy(in[row*l.numFeatures:(row+1)*l.numFeatures], sample.Features)
		labels[row] = sample.Label
	}

	return train.Batch[B]{
		Inputs:  tensor.New[float32, B](inputs, l.backend),
		Targets: tensor.New[int32, B](targets, l.backend),
	}
}
