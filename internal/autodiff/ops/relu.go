package ops

import (
	"github.com/flintml/flint/internal/tensor"
)

// ReLUOp represents a rectified linear unit: output = max(0, input).
//
// Backward pass: the gradient passes through where the input was
// positive and is zeroed elsewhere.
type ReLUOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward masks the output gradient by the sign of the input.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	grad, err := tensor.NewRaw(outputGrad.Shape(), outputGrad.DType(), outputGrad.Device())
	if err != nil {
		panic(err)
	}

	switch input.DType() {
	case tensor.Float32:
		in := input.AsFloat32()
		og := outputGrad.AsFloat32()
		dst := grad.AsFloat32()
		for i, v := range in {
			if v > 0 {
				dst[i] = og[i]
			}
		}
	case tensor.Float64:
		in := input.AsFloat64()
		og := outputGrad.AsFloat64()
		dst := grad.AsFloat64()
		for i, v := range in {
			if v > 0 {
				dst[i] = og[i]
			}
		}
	default:
		panic(tensor.Statef("relu_backward", "unsupported dtype %s", input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor max(0, input).
func (op *ReLUOp) Output() *tensor.RawTensor {
	return op.output
}
