package cpu

import (
	"github.com/flintml/flint/internal/tensor"
)

// Reshape returns a tensor with the same data and a new shape.
// The new shape must describe the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(tensor.Shapef("reshape", "invalid shape %v: %v", newShape, err))
	}
	if newShape.NumElements() != t.NumElements() {
		panic(tensor.Shapef("reshape", "cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result := newRaw("reshape", newShape, t.DType(), cpu.device)
	copy(result.Data(), t.Data())
	return result
}

// Transpose permutes the tensor's dimensions.
// If axes is empty, all dimensions are reversed (standard transpose for 2D).
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(tensor.Shapef("transpose", "expected %d axes for shape %v, got %d", ndim, shape, len(axes)))
	}

	// Validate that axes is a permutation of [0, ndim).
	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(tensor.Shapef("transpose", "invalid axes permutation %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result := newRaw("transpose", outShape, t.DType(), cpu.device)

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	n := t.NumElements()

	// out[i0, i1, ...] = in[i_{axes[0]}, i_{axes[1]}, ...]
	mapIndex := func(flat int) int {
		inOffset := 0
		rem := flat
		for d := 0; d < ndim; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			inOffset += coord * inStrides[axes[d]]
		}
		return inOffset
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	case tensor.Int32:
		src, dst := t.AsInt32(), result.AsInt32()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	case tensor.Int64:
		src, dst := t.AsInt64(), result.AsInt64()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	}

	return result
}
