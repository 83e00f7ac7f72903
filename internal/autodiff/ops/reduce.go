package ops

import "github.com/flintml/flint/internal/tensor"

// SumOp represents a full reduction to a scalar: output = Σ input.
//
// Backward pass: every input element contributed with weight 1, so the
// scalar output gradient broadcasts uniformly over the input shape.
type SumOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward fills the input shape with the scalar output gradient.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := fillLike(op.inputs[0], outputGrad, 1)
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *SumOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the scalar sum.
func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}

// MeanOp represents a full reduction to the scalar mean of the input.
//
// Backward pass: each element contributed with weight 1/N.
type MeanOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{
		inputs: []*tensor.RawTensor{input},
		output: output,
	}
}

// Backward fills the input shape with outputGrad / N.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.inputs[0].NumElements()
	grad := fillLike(op.inputs[0], outputGrad, 1/float64(n))
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *MeanOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the scalar mean.
func (op *MeanOp) Output() *tensor.RawTensor {
	return op.output
}

// fillLike allocates a tensor shaped like input and fills it with the
// scalar gradient times the given weight.
func fillLike(input, outputGrad *tensor.RawTensor, weight float64) *tensor.RawTensor {
	grad, err := tensor.NewRaw(input.Shape(), input.DType(), input.Device())
	if err != nil {
		panic(err)
	}

	switch input.DType() {
	case tensor.Float32:
		v := outputGrad.AsFloat32()[0] * float32(weight)
		dst := grad.AsFloat32()
		for i := range dst {
			dst[i] = v
		}
	case tensor.Float64:
		v := outputGrad.AsFloat64()[0] * weight
		dst := grad.AsFloat64()
		for i := range dst {
			dst[i] = v
		}
	default:
		panic(tensor.Statef("reduce_backward", "unsupported dtype %s", input.DType()))
	}

	return grad
}
