package ops

import "github.com/flintml/flint/internal/tensor"

// TanhOp represents the hyperbolic tangent: output = tanh(input).
//
// Backward pass: d(tanh(x))/dx = 1 - tanh(x)², computed from the
// cached output.
type TanhOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward computes grad = outputGrad * (1 - output²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
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
			dst[i] = og[i] * (1 - v*v)
		}
	case tensor.Float64:
		ys := y.AsFloat64()
		og := outputGrad.AsFloat64()
		dst := grad.AsFloat64()
		for i, v := range ys {
			dst[i] = og[i] * (1 - v*v)
		}
	default:
		panic(tensor.Statef("tanh_backward", "unsupported dtype %s", y.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *TanhOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor tanh(input).
func (op *TanhOp) Output() *tensor.RawTensor {
	return op.output
}
