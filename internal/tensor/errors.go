package tensor

import "fmt"

// The error taxonomy is deterministic: every failure kind reproduces exactly
// given the same inputs. There is no I/O or contention in this core, so no
// error is transient or retryable.
//
// Constructors and the training loop return these as ordinary errors. Tensor
// operation methods, which sit on the hot path, panic carrying a typed value
// instead; callers that need to translate a panic back into an error can use
// AsError on the recovered value.

// ShapeError reports operands whose shapes are incompatible for an operation,
// or a backward pass seeded with a gradient of the wrong shape.
type ShapeError struct {
	Op  string // operation that rejected the shapes, e.g. "add", "matmul"
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Shapef builds a *ShapeError with a formatted message.
func Shapef(op, format string, args ...any) *ShapeError {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IndexError reports an index outside its valid range, e.g. a class label
// outside [0, numClasses). It indicates malformed input data, not a core defect.
type IndexError struct {
	Op    string
	Index int
	Bound int // valid indices are [0, Bound)
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Op, e.Index, e.Bound)
}

// StateError reports an operation invoked in a state that cannot serve it:
// an optimizer step with no accumulated gradients, or a backward pass on a
// tensor that no recorded operation produced.
type StateError struct {
	Op  string
	Msg string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Statef builds a *StateError with a formatted message.
func Statef(op, format string, args ...any) *StateError {
	return &StateError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// AsError converts a recovered panic value into an error if it belongs to the
// tensor error taxonomy. Returns nil for foreign panic values, which should be
// re-panicked by the caller.
func AsError(recovered any) error {
	switch e := recovered.(type) {
	case *ShapeError:
		return e
	case *IndexError:
		return e
	case *StateError:
		return e
	default:
		return nil
	}
}
