// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp / SubOp: element-wise addition and subtraction
//   - MulOp / DivOp: element-wise multiplication and division
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - ReshapeOp / TransposeOp: shape rearrangement (gradient flows back rearranged)
//   - ExpOp / LogOp: element-wise exponential and logarithm
//   - ReLUOp / SigmoidOp / TanhOp: activations
//   - LogSoftmaxOp: numerically stable log-softmax over the last dimension
//   - NLLOp: negative log-likelihood over log-probabilities and class labels
//   - SumOp / MeanOp: reduction to a scalar
package ops

import "github.com/flintml/flint/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
