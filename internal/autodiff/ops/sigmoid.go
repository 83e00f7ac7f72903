package ops

import "github.com/flintml/flint/internal/tensor"

// SigmoidOp represents the logistic function: output = 1 / (1 + exp(-input)).
//
// Backward pass: d(sigmoid(x))/dx = sigmoid(x) * (1 - sigmoid(x)),
// computed from the cached output.
type SigmoidOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward computes grad = outputGrad * output * (1 - output).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	grad, err := tensor.NewRaw(outputGrad.Shape(), outputGrad.DType(), outputGrad.Device())
	if err != nil {
		panic(err)
	}

	switch y.DType() {
	case tensor.Float32:
		ys := y.AsFloat32()
		og := outputGrad.AsFloat32()
		dst := grad.AsFloat32()
		for i, v := range ys {
			dst[i] = og[i] * v * (1 - v)
		}
	case tensor.Float64:
		ys := y.AsFloat64()
		og := outputGrad.AsFloat64()
		dst := grad.AsFloat64()
		for i, v := range ys {
			dst[i] = og[i] * v * (1 - v)
		}
	default:
		panic(tensor.Statef("sigmoid_backward", "unsupported dtype %s", y.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *SigmoidOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor sigmoid(input).
func (op *SigmoidOp) Output() *tensor.RawTensor {
	return op.output
}
