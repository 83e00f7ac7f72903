// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

// Backend defines the interface that all compute backends must
// implement. Backends handle the actual computation for tensor
// operations.
//
// Implementations:
//   - backend/cpu: pure Go, parallelized across rows
//
// Decorator backends for additional functionality:
//   - autodiff: automatic differentiation (wraps any backend)
//
// Example:
//
//	import (
//	    "github.com/flintml/flint/tensor"
//	    "github.com/flintml/flint/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y) // uses backend.Add under the hood
type Backend interface {
	// Element-wise binary operations, with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor

	// Reduction operations (scalar result).
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
