package cpu

import (
	"github.com/flintml/flint/internal/parallel"
	"github.com/flintml/flint/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
// Rows of the output are computed in parallel for large matrices.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(tensor.Shapef("matmul", "expected 2D operands, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(tensor.Shapef("matmul", "inner dimensions do not match: %v @ %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(tensor.Shapef("matmul", "dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result := newRaw("matmul", tensor.Shape{m, n}, a.DType(), cpu.device)

	// Rows are independent, so one goroutine per chunk of rows needs no locking.
	cfg := cpu.parallel
	cfg.Threshold = 1 // A row is already a substantial unit of work.

	switch a.DType() {
	case tensor.Float32:
		aData, bData, resData := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		parallel.For(m, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				matmulRowF32(aData[i*k:(i+1)*k], bData, resData[i*n:(i+1)*n], k, n)
			}
		}, cfg)
	case tensor.Float64:
		aData, bData, resData := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		parallel.For(m, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				matmulRowF64(aData[i*k:(i+1)*k], bData, resData[i*n:(i+1)*n], k, n)
			}
		}, cfg)
	default:
		panic(tensor.Shapef("matmul", "unsupported dtype %s (only float32/float64 supported)", a.DType()))
	}

	return result
}

// matmulRowF32 computes one output row: out = row @ b.
// Iterating k in the outer loop keeps the inner loop sequential over b's rows,
// which is cache-friendly for row-major layout.
func matmulRowF32(row, b, out []float32, k, n int) {
	for j := range out {
		out[j] = 0
	}
	for kk := 0; kk < k; kk++ {
		aVal := row[kk]
		if aVal == 0 {
			continue
		}
		bRow := b[kk*n : (kk+1)*n]
		for j := 0; j < n; j++ {
			out[j] += aVal * bRow[j]
		}
	}
}

func matmulRowF64(row, b, out []float64, k, n int) {
	for j := range out {
		out[j] = 0
	}
	for kk := 0; kk < k; kk++ {
		aVal := row[kk]
		if aVal == 0 {
			continue
		}
		bRow := b[kk*n : (kk+1)*n]
		for j := 0; j < n; j++ {
			out[j] += aVal * bRow[j]
		}
	}
}
