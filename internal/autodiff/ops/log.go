package ops

import "github.com/flintml/flint/internal/tensor"

// LogOp represents an element-wise natural logarithm: output = log(input).
//
// Backward pass: d(log(x))/dx = 1/x, so grad = outputGrad / input.
type LogOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward computes grad = outputGrad / input.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := backend.Div(outputGrad, op.inputs[0])
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *LogOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor log(input).
func (op *LogOp) Output() *tensor.RawTensor {
	return op.output
}
