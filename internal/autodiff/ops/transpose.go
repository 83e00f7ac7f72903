package ops

import "github.com/flintml/flint/internal/tensor"

// TransposeOp represents an axes permutation. The gradient of a
// transpose is the incoming gradient transposed by the inverse
// permutation.
type TransposeOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	axes   []int // empty means full reversal
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
		axes:   axes,
	}
}

// Backward transposes the output gradient by the inverse permutation.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if len(op.axes) == 0 {
		// A full reversal is its own inverse.
		grad := backend.Transpose(outputGrad)
		return []*tensor.RawTensor{grad}
	}

	inverse := make([]int, len(op.axes))
	for i, axis := range op.axes {
		inverse[axis] = i
	}
	grad := backend.Transpose(outputGrad, inverse...)
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *TransposeOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the transposed tensor.
func (op *TransposeOp) Output() *tensor.RawTensor {
	return op.output
}
