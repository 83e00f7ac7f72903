package cpu

import (
	"github.com/flintml/flint/internal/tensor"
)

// Sum reduces a tensor to the scalar sum of its elements (shape [1]).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRaw("sum", tensor.Shape{1}, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(tensor.Shapef("sum", "unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// Mean reduces a tensor to the scalar mean of its elements (shape [1]).
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.Sum(x)
	n := x.NumElements()

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] /= float32(n)
	case tensor.Float64:
		result.AsFloat64()[0] /= float64(n)
	}

	return result
}
