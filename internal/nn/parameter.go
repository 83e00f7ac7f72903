package nn

import (
	"github.com/flintml/flint/internal/tensor"
)

// Parameter is a trainable tensor with gradient storage. Parameters
// represent the weights and biases of layers; the optimizer reads
// Grad() and writes updated values into Tensor().
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B] // nil until a backward pass populates it
}

// NewParameter creates a trainable parameter from an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name, e.g. "weight" or "bias".
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the stored gradient, or nil before the first backward
// pass and after ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad replaces the stored gradient.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// AccumulateGrad adds grad into the stored gradient, element-wise.
// A nil stored gradient is treated as zero, so the first call simply
// stores grad. Panics with a ShapeError when grad does not match the
// parameter shape.
func (p *Parameter[B]) AccumulateGrad(grad *tensor.Tensor[float32, B]) {
	if !p.tensor.Shape().Equal(grad.Shape()) {
		panic(tensor.Shapef("accumulate_grad",
			"parameter %q: shape %v, incoming gradient %v",
			p.name, p.tensor.Shape(), grad.Shape()))
	}
	if p.grad == nil {
		p.grad = grad
		return
	}

	dst := p.grad.Data()
	src := grad.Data()
	for i := range dst {
		dst[i] += src[i]
	}
}

// ZeroGrad clears the stored gradient. Call before each training
// iteration to avoid mixing gradients across batches.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// AccumulateGradients distributes gradients from a backward-pass result
// map into the matching parameters. Parameters whose raw tensor does
// not appear in the map are left untouched.
func AccumulateGradients[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor, backend B) {
	for _, p := range params {
		raw, ok := grads[p.Tensor().Raw()]
		if !ok {
			continue
		}
		p.AccumulateGrad(tensor.New[float32, B](raw, backend))
	}
}
