package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - cpu.Backend: pure Go with a parallel matrix multiply
//   - autodiff.Backend: decorator that records operations on a gradient tape
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations (2D: [M, K] @ [K, N] -> [M, N])
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Math operations (element-wise)
	Exp(x *RawTensor) *RawTensor // exponential
	Log(x *RawTensor) *RawTensor // natural logarithm

	// Reduction operations (scalar result, shape [1])
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
