// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/flintml/flint/internal/tensor"
)

// ShapeError reports dimension mismatches: incompatible operands,
// invalid reshapes, malformed constructor arguments.
type ShapeError = tensor.ShapeError

// IndexError reports an out-of-range element or label access.
type IndexError = tensor.IndexError

// StateError reports an API call that is invalid in the current state,
// such as stepping an optimizer before any backward pass.
type StateError = tensor.StateError

// AsError converts a recovered panic value into one of the typed
// errors above, or nil when the panic did not originate from this
// framework. Training loops use it to turn hot-path panics back into
// ordinary error returns.
func AsError(recovered any) error {
	return tensor.AsError(recovered)
}
