package cpu

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/flintml/flint/internal/tensor"
)

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRaw("exp", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = math32.Exp(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Exp(v)
		}
	default:
		panic(tensor.Shapef("exp", "unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// Log computes element-wise natural logarithm: ln(x).
// Non-positive inputs follow IEEE 754 semantics (-Inf at 0, NaN below).
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRaw("log", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = math32.Log(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Log(v)
		}
	default:
		panic(tensor.Shapef("log", "unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}
