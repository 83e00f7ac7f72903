// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// The backend implements all ops of tensor.Backend with float32 and
// float64 support, NumPy-compatible broadcasting, and row-parallel
// matrix multiplication.
//
// Example:
//
//	import (
//	    "github.com/flintml/flint/backend/cpu"
//	    "github.com/flintml/flint/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	internalcpu "github.com/flintml/flint/internal/backend/cpu"
	"github.com/flintml/flint/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
