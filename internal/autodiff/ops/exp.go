package ops

import "github.com/flintml/flint/internal/tensor"

// ExpOp represents an element-wise exponential: output = exp(input).
// Since d(exp(x))/dx = exp(x), the backward pass reuses the stored
// output instead of recomputing the exponential.
type ExpOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward computes grad = outputGrad * exp(input) using the cached output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := backend.Mul(outputGrad, op.output)
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *ExpOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor exp(input).
func (op *ExpOp) Output() *tensor.RawTensor {
	return op.output
}
