package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flintml/flint/internal/autodiff"
	"github.com/flintml/flint/internal/backend/cpu"
	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/optim"
	"github.com/flintml/flint/internal/tensor"
)

type adBackend = *autodiff.Backend[*cpu.CPUBackend]

func paramWithGrad(t *testing.T, backend adBackend, values, grad []float32) *nn.Parameter[adBackend] {
	t.Helper()
	pt, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	require.NoError(t, err)
	p := nn.NewParameter("w", pt)
	if grad != nil {
		gt, err := tensor.FromSlice(grad, tensor.Shape{len(grad)}, backend)
		require.NoError(t, err)
		p.AccumulateGrad(gt)
	}
	return p
}

func TestSGDStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	p := paramWithGrad(t, backend, []float32{1, 2, 3}, []float32{0.5, -1, 2})

	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1}, backend)
	require.NoError(t, sgd.Step())

	assert.InDeltaSlice(t, []float32{0.95, 2.1, 2.8}, p.Tensor().Data(), 1e-6)
}

func TestSGDStepWithoutGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	p := paramWithGrad(t, backend, []float32{1, 2}, nil)

	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1}, backend)
	err := sgd.Step()
	require.Error(t, err)

	var stateErr *tensor.StateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, []float32{1, 2}, p.Tensor().Data(), "parameters must not move without gradients")
}

func TestSGDSkipsParamsWithoutGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	withGrad := paramWithGrad(t, backend, []float32{1}, []float32{1})
	noGrad := paramWithGrad(t, backend, []float32{5}, nil)

	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{withGrad, noGrad}, optim.SGDConfig{LR: 0.5}, backend)
	require.NoError(t, sgd.Step())

	assert.Equal(t, []float32{0.5}, withGrad.Tensor().Data())
	assert.Equal(t, []float32{5}, noGrad.Tensor().Data())
}

func TestSGDZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	p := paramWithGrad(t, backend, []float32{1}, []float32{2})

	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1}, backend)
	sgd.ZeroGrad()
	assert.Nil(t, p.Grad())

	err := sgd.Step()
	var stateErr *tensor.StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestSGDMomentum(t *testing.T) {
	backend := autodiff.New(cpu.New())
	p := paramWithGrad(t, backend, []float32{1}, []float32{1})

	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)

	// Step 1: v = 1, w = 1 - 0.1*1 = 0.9
	require.NoError(t, sgd.Step())
	assert.InDelta(t, 0.9, float64(p.Tensor().Data()[0]), 1e-6)

	// Same gradient again. Step 2: v = 0.9 + 1 = 1.9, w = 0.9 - 0.19 = 0.71
	p.ZeroGrad()
	gt, err := tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	p.AccumulateGrad(gt)
	require.NoError(t, sgd.Step())
	assert.InDelta(t, 0.71, float64(p.Tensor().Data()[0]), 1e-6)
}

func TestSGDDefaultLR(t *testing.T) {
	backend := autodiff.New(cpu.New())
	sgd := optim.NewSGD([]*nn.Parameter[adBackend]{}, optim.SGDConfig{}, backend)
	assert.Equal(t, float32(0.01), sgd.GetLR())

	sgd.SetLR(0.05)
	assert.Equal(t, float32(0.05), sgd.GetLR())
}

func TestSGDMomentumStateDictRoundTrip(t *testing.T) {
	backend := autodiff.New(cpu.New())
	p := paramWithGrad(t, backend, []float32{1, 1}, []float32{0.5, 0.25})

	src := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)
	require.NoError(t, src.Step())

	state := src.StateDict()
	require.Len(t, state, 1)

	dst := optim.NewSGD([]*nn.Parameter[adBackend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)
	require.NoError(t, dst.LoadStateDict(state))
	assert.Equal(t, state["velocity.0"].AsFloat32(), dst.StateDict()["velocity.0"].AsFloat32())
}
