package ops

import (
	"fmt"

	"github.com/flintml/flint/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[1,4] + b[3,4] -> c[3,4]  (a was broadcast along dim 0)
//	Backward: grad_c[3,4] -> grad_a[1,4] (sum along dim 0)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, _ tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// If shapes already match, clone to avoid aliasing issues
	// (prevents inplace operations from modifying shared gradients)
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// NumPy broadcasting aligns shapes from the right: first sum away extra
	// leading dimensions, then sum along dimensions where the target is 1.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = sumAlongDimension(result, 0)
		result = dropLeadingDim(result)
	}

	resShape := result.Shape()
	for i := 0; i < len(targetShape); i++ {
		if targetShape[i] == 1 && resShape[i] > 1 {
			result = sumAlongDimension(result, i)
			resShape = result.Shape()
		}
	}

	if !result.Shape().Equal(targetShape) {
		panic(tensor.Shapef("reduce_broadcast", "cannot reduce gradient %v to %v", gradShape, targetShape))
	}

	return result
}

// sumAlongDimension sums a tensor along the specified dimension (kept as size 1).
func sumAlongDimension(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumAlongDimension: invalid dimension %d for shape %v", dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = 1

	result, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sumAlongDimension: failed to create result: %v", err))
	}

	strides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	n := shape.NumElements()

	// Map each source element to the output slot with its dim coordinate zeroed.
	reducedIndex := func(flat int) int {
		out := 0
		rem := flat
		for d := 0; d < len(shape); d++ {
			coord := rem / strides[d]
			rem %= strides[d]
			if d != dim {
				out += coord * outStrides[d]
			}
		}
		return out
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[reducedIndex(i)] += src[i]
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[reducedIndex(i)] += src[i]
		}
	default:
		panic(fmt.Sprintf("sumAlongDimension: unsupported dtype %s", t.DType()))
	}

	return result
}

// dropLeadingDim removes a leading dimension of size 1.
func dropLeadingDim(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) == 0 || shape[0] != 1 {
		panic(fmt.Sprintf("dropLeadingDim: leading dimension is not 1 in shape %v", shape))
	}
	out := t.Clone()
	out.SetShape(shape[1:].Clone())
	return out
}

// negateGradient returns -grad.
func negateGradient(grad *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(grad.Shape(), grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("negateGradient: failed to create result: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		src, dst := grad.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = -v
		}
	case tensor.Float64:
		src, dst := grad.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = -v
		}
	default:
		panic(fmt.Sprintf("negateGradient: unsupported dtype %s", grad.DType()))
	}

	return result
}
