package train_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flintml/flint/internal/autodiff"
	"github.com/flintml/flint/internal/backend/cpu"
	"github.com/flintml/flint/internal/dataset"
	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/optim"
	"github.com/flintml/flint/internal/tensor"
	"github.com/flintml/flint/internal/train"
)

type adBackend = *autodiff.Backend[*cpu.CPUBackend]

func newClassifier(backend adBackend, features, hidden, classes int) *nn.Sequential[adBackend] {
	return nn.NewSequential[adBackend](
		nn.NewLinear(features, hidden, backend),
		nn.NewReLU[adBackend](),
		nn.NewLinear(hidden, classes, backend),
		nn.NewLogSoftmax[adBackend](),
	)
}

func newLoader(backend adBackend, numSamples int) *dataset.Loader[adBackend] {
	samples := dataset.Gaussian(dataset.GaussianConfig{
		NumSamples:  numSamples,
		NumFeatures: 2,
		NumClasses:  3,
		Spread:      0.4,
		Distance:    2,
		Seed:        17,
	})
	return dataset.NewLoader(samples, 16, 23, backend)
}

func fitOnce(t *testing.T, epochs int) []float64 {
	t.Helper()
	nn.Seed(99)
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 16, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)

	losses, err := trainer.Fit(context.Background(), newLoader(backend, 192), train.Config{Epochs: epochs})
	require.NoError(t, err)
	require.Len(t, losses, epochs)
	return losses
}

func TestFitLossDecreases(t *testing.T) {
	losses := fitOnce(t, 10)

	for _, loss := range losses {
		require.False(t, math.IsNaN(loss) || math.IsInf(loss, 0), "loss must stay finite, got %v", losses)
	}
	assert.Less(t, losses[len(losses)-1], losses[0],
		"final epoch loss %v should undercut first epoch loss %v", losses[len(losses)-1], losses[0])
	assert.Less(t, losses[len(losses)-1], 0.5, "separable clusters should train to low loss")
}

func TestFitReproducible(t *testing.T) {
	first := fitOnce(t, 4)
	second := fitOnce(t, 4)
	assert.Equal(t, first, second, "same seeds must give identical epoch losses")
}

func TestFitValidatesConfig(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 4, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)

	_, err := trainer.Fit(context.Background(), newLoader(backend, 32), train.Config{Epochs: 0})
	assert.Error(t, err)
}

func TestFitStopsOnCancelledContext(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 4, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := trainer.Fit(ctx, newLoader(backend, 32), train.Config{Epochs: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

// badSource serves a batch whose feature width does not match the model.
type badSource struct {
	backend adBackend
}

func (s badSource) NumBatches() int { return 1 }
func (s badSource) Shuffle()       {}

func (s badSource) Batch(i int) train.Batch[adBackend] {
	inputs, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, s.backend)
	if err != nil {
		panic(err)
	}
	targets, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, s.backend)
	if err != nil {
		panic(err)
	}
	return train.Batch[adBackend]{Inputs: inputs, Targets: targets}
}

func TestFitReturnsShapeMismatchAsError(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 4, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)

	_, err := trainer.Fit(context.Background(), badSource{backend: backend}, train.Config{Epochs: 1})
	require.Error(t, err)

	var shapeErr *tensor.ShapeError
	assert.ErrorAs(t, err, &shapeErr, "a bad batch should fail Fit with a shape error, not a panic")
}

func TestEvaluateAfterTraining(t *testing.T) {
	nn.Seed(99)
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 16, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)
	loader := newLoader(backend, 192)

	_, err := trainer.Fit(context.Background(), loader, train.Config{Epochs: 10})
	require.NoError(t, err)

	opsBefore := backend.GetTape().NumOps()
	meanLoss, accuracy, err := trainer.Evaluate(context.Background(), loader)
	require.NoError(t, err)
	assert.Less(t, meanLoss, 0.5)
	assert.Greater(t, accuracy, 0.9, "well separated clusters should classify cleanly")

	assert.False(t, backend.GetTape().IsRecording(), "evaluation must not leave recording on")
	assert.Equal(t, opsBefore, backend.GetTape().NumOps(), "evaluation forward passes must stay off the tape")
}

func TestPredictReturnsProbabilities(t *testing.T) {
	nn.Seed(99)
	backend := autodiff.New(cpu.New())
	model := newClassifier(backend, 2, 8, 3)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
	trainer := train.New[adBackend](model, sgd, backend)

	inputs, err := tensor.FromSlice([]float32{2, 0, -2, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	probs, err := trainer.Predict(inputs)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, 3}, probs.Shape())

	data := probs.Data()
	for row := 0; row < 2; row++ {
		var sum float64
		for j := 0; j < 3; j++ {
			p := float64(data[row*3+j])
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-5, "row %d should be a probability distribution", row)
	}
}
