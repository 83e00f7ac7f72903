package cpu

import (
	"fmt"

	"github.com/flintml/flint/internal/tensor"
)

// binary dispatches an element-wise binary operation with broadcasting.
//
// Fast paths, in order:
//  1. Same shape and a's buffer is unique: compute inplace into a.
//  2. Same shape: vectorized loop over flat data.
//  3. Otherwise: broadcast loop using zero-strides for size-1 dimensions.
func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(tensor.Shapef(op, "dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(&tensor.ShapeError{Op: op, Msg: err.Error()})
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			// Inplace into a: safe because no other reference observes a's buffer.
			applySameShape(op, a, a, b, f32, f64)
			return a
		}
		result := newRaw(op, outShape, a.DType(), cpu.device)
		applySameShape(op, result, a, b, f32, f64)
		return result
	}

	result := newRaw(op, outShape, a.DType(), cpu.device)
	applyBroadcast(op, result, a, b, outShape, f32, f64)
	return result
}

// applySameShape runs the flat vectorized loop (dst may alias a).
func applySameShape(
	op string,
	dst, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) {
	switch a.DType() {
	case tensor.Float32:
		dstData, aData, bData := dst.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range aData {
			dstData[i] = f32(aData[i], bData[i])
		}
	case tensor.Float64:
		dstData, aData, bData := dst.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range aData {
			dstData[i] = f64(aData[i], bData[i])
		}
	default:
		panic(tensor.Shapef(op, "unsupported dtype %s (only float32/float64 supported)", a.DType()))
	}
}

// applyBroadcast runs the general broadcast loop. Operand offsets are computed
// with zero-strides: a dimension of size 1 (or a missing leading dimension)
// contributes stride 0, so its single element is reused across the output.
func applyBroadcast(
	op string,
	dst, a, b *tensor.RawTensor,
	outShape tensor.Shape,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) {
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		dstData, aData, bData := dst.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := 0; i < n; i++ {
			ai, bi := broadcastOffsets(i, outStrides, aStrides, bStrides)
			dstData[i] = f32(aData[ai], bData[bi])
		}
	case tensor.Float64:
		dstData, aData, bData := dst.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := 0; i < n; i++ {
			ai, bi := broadcastOffsets(i, outStrides, aStrides, bStrides)
			dstData[i] = f64(aData[ai], bData[bi])
		}
	default:
		panic(tensor.Shapef(op, "unsupported dtype %s (only float32/float64 supported)", a.DType()))
	}
}

// broadcastStrides computes the stride of each output dimension into the
// input's flat data, aligning shapes from the right. Size-1 and missing
// dimensions get stride 0.
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	strides := make([]int, len(out))
	for i := range out {
		inIdx := len(in) - len(out) + i
		if inIdx < 0 || in[inIdx] == 1 {
			strides[i] = 0
		} else {
			strides[i] = inStrides[inIdx]
		}
	}
	return strides
}

// broadcastOffsets maps a flat output index to flat operand offsets.
func broadcastOffsets(flat int, outStrides, aStrides, bStrides []int) (int, int) {
	ai, bi := 0, 0
	rem := flat
	for d := 0; d < len(outStrides); d++ {
		coord := rem / outStrides[d]
		rem %= outStrides[d]
		ai += coord * aStrides[d]
		bi += coord * bStrides[d]
	}
	return ai, bi
}

// newRaw allocates a result tensor, panicking on invalid shapes.
func newRaw(op string, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
