package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/tensor"
)

func targetsFrom(t *testing.T, backend adBackend, labels []int32) *tensor.Tensor[int32, adBackend] {
	t.Helper()
	targets, err := tensor.FromSlice(labels, tensor.Shape{len(labels)}, backend)
	require.NoError(t, err)
	return targets
}

func TestLogSoftmaxRowsAreDistributions(t *testing.T) {
	backend := newBackend()
	ls := nn.NewLogSoftmax[adBackend]()

	x, err := tensor.FromSlice([]float32{0.5, -1.2, 3.0, 0, 0, 0}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	out := ls.Forward(x)
	data := out.Data()
	for row := 0; row < 2; row++ {
		var sum float64
		for col := 0; col < 3; col++ {
			v := float64(data[row*3+col])
			assert.LessOrEqual(t, v, 0.0, "log-probabilities are non-positive")
			sum += math.Exp(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-5, "row %d must exponentiate to a distribution", row)
	}
}

func TestLogSoftmaxStableAtExtremeLogits(t *testing.T) {
	backend := newBackend()
	ls := nn.NewLogSoftmax[adBackend]()

	x, err := tensor.FromSlice([]float32{1000, 999, 998, -998, -999, -1000}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	out := ls.Forward(x)
	for _, v := range out.Data() {
		assert.False(t, math.IsNaN(float64(v)), "log-softmax produced NaN")
		assert.False(t, math.IsInf(float64(v), 0), "log-softmax produced Inf")
	}

	// Both rows have the same relative logits, so identical outputs.
	data := out.Data()
	for col := 0; col < 3; col++ {
		assert.InDelta(t, float64(data[col]), float64(data[3+col]), 1e-5)
	}
}

func TestLogSoftmaxRejects1D(t *testing.T) {
	backend := newBackend()
	ls := nn.NewLogSoftmax[adBackend]()

	x, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	assert.Panics(t, func() { ls.Forward(x) })
}

func TestNLLLossHandComputed(t *testing.T) {
	backend := newBackend()
	loss := nn.NewNLLLoss(backend)

	logProbs, err := tensor.FromSlice([]float32{
		-0.5, -1.5, -2.0,
		-3.0, -0.1, -2.5,
	}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	out := loss.Forward(logProbs, targetsFrom(t, backend, []int32{0, 1}))
	require.Equal(t, 1, out.NumElements())
	// -(logProbs[0][0] + logProbs[1][1]) / 2 = -(-0.5 + -0.1)/2 = 0.3
	assert.InDelta(t, 0.3, float64(out.Item()), 1e-6)
}

func TestNLLLossLabelOutOfRange(t *testing.T) {
	backend := newBackend()
	loss := nn.NewNLLLoss(backend)

	logProbs, err := tensor.FromSlice(make([]float32, 6), tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		var indexErr *tensor.IndexError
		require.ErrorAs(t, tensor.AsError(r), &indexErr)
		assert.Equal(t, 3, indexErr.Index)
		assert.Equal(t, 3, indexErr.Bound)
	}()
	loss.Forward(logProbs, targetsFrom(t, backend, []int32{0, 3}))
}

func TestNLLLossBatchMismatch(t *testing.T) {
	backend := newBackend()
	loss := nn.NewNLLLoss(backend)

	logProbs, err := tensor.FromSlice(make([]float32, 6), tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() {
		loss.Forward(logProbs, targetsFrom(t, backend, []int32{0, 1, 2}))
	})
}

func TestCrossEntropyMatchesLogSoftmaxPlusNLL(t *testing.T) {
	backend := newBackend()

	logits, err := tensor.FromSlice([]float32{0.2, -1.0, 1.5, 0.7, 0.0, -0.4}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	labels := []int32{2, 0}

	ce := nn.NewCrossEntropyLoss(backend).Forward(logits, targetsFrom(t, backend, labels))

	ls := nn.NewLogSoftmax[adBackend]()
	nll := nn.NewNLLLoss(backend).Forward(ls.Forward(logits), targetsFrom(t, backend, labels))

	assert.InDelta(t, float64(nll.Item()), float64(ce.Item()), 1e-6)
}

func TestMSELoss(t *testing.T) {
	backend := newBackend()
	loss := nn.NewMSELoss(backend)

	pred, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	target, err := tensor.FromSlice([]float32{1, 1, 5, 2}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := loss.Forward(pred, target)
	// ((0)² + (1)² + (-2)² + (2)²) / 4 = 9/4
	assert.InDelta(t, 2.25, float64(out.Item()), 1e-6)

	assert.Panics(t, func() {
		bad, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
		loss.Forward(pred, bad)
	})
}

func TestAccuracy(t *testing.T) {
	backend := newBackend()

	scores, err := tensor.FromSlice([]float32{
		0.9, 0.1, 0.0, // pred 0
		0.2, 0.3, 0.5, // pred 2
		0.1, 0.8, 0.1, // pred 1
		0.6, 0.3, 0.1, // pred 0
	}, tensor.Shape{4, 3}, backend)
	require.NoError(t, err)

	acc := nn.Accuracy(scores, targetsFrom(t, backend, []int32{0, 2, 0, 0}))
	assert.InDelta(t, 0.75, acc, 1e-9)
}
