package ops

import "github.com/flintml/flint/internal/tensor"

// MulOp records output = a * b. By the product rule each operand's
// gradient is the output gradient scaled by the other operand:
//
//	grad_a = outputGrad * b
//	grad_b = outputGrad * a
type MulOp struct {
	inputs []*tensor.RawTensor // [a, b]
	output *tensor.RawTensor
}

// NewMulOp creates a MulOp over the forward operands and result.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{
		inputs: []*tensor.RawTensor{a, b},
		output: output,
	}
}

// Backward scales outputGrad by the opposite operand. The backend Mul
// runs while the tape has recording disabled, so these products never
// become tape entries themselves.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(outputGrad, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(outputGrad, a), b.Shape(), backend),
	}
}

// Inputs returns the operands [a, b].
func (op *MulOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the product tensor.
func (op *MulOp) Output() *tensor.RawTensor {
	return op.output
}
