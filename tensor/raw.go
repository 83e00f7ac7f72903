// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/flintml/flint/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - shape and type information via Shape(), DType(), Device()
//   - type-safe data access via AsFloat32(), AsInt32(), etc.
//   - copy-on-write semantics via Clone()
//   - reference counting for buffer reuse
//
// Most users should use the high-level Tensor[T, B] type instead.
type RawTensor = tensor.RawTensor
