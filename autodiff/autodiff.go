// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// It wraps any compute backend with a gradient tape that records
// operations during the forward pass and replays them in reverse to
// compute gradients.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	backend.Tape().StartRecording()
//	x := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
//	y := x.Mul(x)
//	grads, err := autodiff.Backward(y, backend)
//	_ = grads[x.Raw()] // dy/dx = 4
package autodiff

import (
	"github.com/flintml/flint/internal/autodiff"
	"github.com/flintml/flint/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New creates an autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of the scalar tensor t with respect to
// every tensor reached by the recorded graph.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(t, backend)
}

// BackwardWithGrad computes gradients of t seeded with an explicit
// output gradient, for non-scalar roots.
func BackwardWithGrad[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], seed *tensor.RawTensor, backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.BackwardWithGrad(t, seed, backend)
}
