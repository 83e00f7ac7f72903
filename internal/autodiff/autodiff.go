// Package autodiff implements reverse-mode automatic differentiation
// using the decorator pattern.
//
// Backend wraps any tensor.Backend implementation and adds gradient
// tracking through a GradientTape:
//   - every forward operation runs on the wrapped backend
//   - while the tape records, each operation is appended as an
//     ops.Operation that knows how to compute its input gradients
//   - Backward walks the tape in reverse, applying the chain rule and
//     accumulating gradients for tensors used more than once
//
// Usage:
//
//	ad := autodiff.New(cpu.New())
//	ad.Tape().StartRecording()
//	x := tensor.FromSlice([]float32{2}, tensor.Shape{1}, ad)
//	y := x.Mul(x)
//	grads, err := autodiff.Backward(y, ad)
//	_ = grads[x.Raw()] // dy/dx = 4
package autodiff

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/flintml/flint/internal/autodiff/ops"
	"github.com/flintml/flint/internal/tensor"
)

// Backend wraps a tensor.Backend and records operations for
// backpropagation. Type parameter B is the wrapped backend.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates an autodiff Backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return &Backend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control: starting and
// stopping recording, clearing between iterations, inspection.
func (b *Backend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *Backend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device of the wrapped backend.
func (b *Backend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
//
// ForceNonUnique pins the operand buffers so the wrapped backend cannot
// take its inplace fast path. Inplace writes would overwrite values the
// backward pass still needs.
func (b *Backend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.Add(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(a, c, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *Backend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.Sub(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubOp(a, c, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.Mul(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulOp(a, c, result))
	}
	return result
}

// Div performs element-wise division and records the operation.
func (b *Backend[B]) Div(a, c *tensor.RawTensor) *tensor.RawTensor {
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.Div(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewDivOp(a, c, result))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend[B]) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.MatMul(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulOp(a, c, result))
	}
	return result
}

// Reshape changes a tensor's shape and records the operation. Recording
// matters even for a pure view change: a bias reshaped for broadcasting
// only receives gradients if the reshape sits on the tape.
func (b *Backend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Reshape(t, newShape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(t, result))
	}
	return result
}

// Transpose permutes a tensor's axes and records the operation. The
// wrapped backend materializes a new tensor, so without recording the
// gradient would stop at the transposed copy and never reach the
// original parameter.
func (b *Backend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(t, axes...)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTransposeOp(t, result, axes))
	}
	return result
}

// Exp computes the element-wise exponential and records the operation.
func (b *Backend[B]) Exp(t *tensor.RawTensor) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Exp(t)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpOp(t, result))
	}
	return result
}

// Log computes the element-wise natural logarithm and records the
// operation. Input values must be positive.
func (b *Backend[B]) Log(t *tensor.RawTensor) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Log(t)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewLogOp(t, result))
	}
	return result
}

// Sum reduces a tensor to its scalar sum and records the operation.
func (b *Backend[B]) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Sum(t)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumOp(t, result))
	}
	return result
}

// Mean reduces a tensor to its scalar mean and records the operation.
func (b *Backend[B]) Mean(t *tensor.RawTensor) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Mean(t)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMeanOp(t, result))
	}
	return result
}

// ReLU applies max(0, x) element-wise and records the operation.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result, err := tensor.NewRaw(x.Shape(), x.DType(), b.Device())
	if err != nil {
		panic(err)
	}

	switch x.DType() {
	case tensor.Float32:
		in := x.AsFloat32()
		out := result.AsFloat32()
		for i, v := range in {
			if v > 0 {
				out[i] = v
			}
		}
	case tensor.Float64:
		in := x.AsFloat64()
		out := result.AsFloat64()
		for i, v := range in {
			if v > 0 {
				out[i] = v
			}
		}
	default:
		panic(tensor.Statef("relu", "unsupported dtype %s", x.DType()))
	}

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReLUOp(x, result))
	}
	return result
}

// Sigmoid applies 1/(1+exp(-x)) element-wise and records the operation.
func (b *Backend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result, err := tensor.NewRaw(x.Shape(), x.DType(), b.Device())
	if err != nil {
		panic(err)
	}

	switch x.DType() {
	case tensor.Float32:
		in := x.AsFloat32()
		out := result.AsFloat32()
		for i, v := range in {
			out[i] = 1 / (1 + math32.Exp(-v))
		}
	case tensor.Float64:
		in := x.AsFloat64()
		out := result.AsFloat64()
		for i, v := range in {
			out[i] = 1 / (1 + math.Exp(-v))
		}
	default:
		panic(tensor.Statef("sigmoid", "unsupported dtype %s", x.DType()))
	}

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSigmoidOp(x, result))
	}
	return result
}

// Tanh applies the hyperbolic tangent element-wise and records the
// operation.
func (b *Backend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result, err := tensor.NewRaw(x.Shape(), x.DType(), b.Device())
	if err != nil {
		panic(err)
	}

	switch x.DType() {
	case tensor.Float32:
		in := x.AsFloat32()
		out := result.AsFloat32()
		for i, v := range in {
			out[i] = math32.Tanh(v)
		}
	case tensor.Float64:
		in := x.AsFloat64()
		out := result.AsFloat64()
		for i, v := range in {
			out[i] = math.Tanh(v)
		}
	default:
		panic(tensor.Statef("tanh", "unsupported dtype %s", x.DType()))
	}

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTanhOp(x, result))
	}
	return result
}

// LogSoftmax computes a numerically stable row-wise log-softmax over
// the last dimension of a 2D float32 tensor and records the operation.
func (b *Backend[B]) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	op := ops.LogSoftmaxForward(x)
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
	return op.Output()
}

// NLLLoss computes the mean negative log-likelihood of log-probability
// rows against integer class targets and records the operation. The
// result is a scalar; targets receive no gradient.
func (b *Backend[B]) NLLLoss(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	defer logProbs.ForceNonUnique()()

	op := ops.NLLForward(logProbs, targets)
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
	return op.Output()
}
