package autodiff

import (
	"github.com/flintml/flint/internal/autodiff/ops"
	"github.com/flintml/flint/internal/tensor"
)

// GradientTape records operations during the forward pass and replays
// them in reverse to compute gradients.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... forward pass ...
//	grads, err := tape.Backward(loss.Raw(), seed, backend)
type GradientTape struct {
	operations []ops.Operation // recorded in execution order
	recording  bool
}

// NewGradientTape creates a new, empty gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64),
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording reports whether the tape is currently recording.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends an operation to the tape if recording is enabled.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear removes all recorded operations. The recording flag is
// preserved, so a training loop can clear between iterations without
// re-arming the tape.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// WithoutRecording runs fn with recording disabled, restoring the
// previous state afterwards. Evaluation and inference code use this to
// keep forward passes off the tape.
func (t *GradientTape) WithoutRecording(fn func()) {
	was := t.recording
	t.recording = false
	defer func() {
		t.recording = was
	}()
	fn()
}

// Backward walks the tape in reverse from root, accumulating gradients
// by the chain rule. seed is the gradient of the final objective with
// respect to root (ones for a scalar loss).
//
// Tensors that are reused across operations have their gradients
// summed. Operations whose output never receives a gradient (dead
// branches) are skipped.
//
// Returns a map from each reached tensor to its accumulated gradient,
// or a StateError when root was not produced by any recorded operation.
func (t *GradientTape) Backward(root, seed *tensor.RawTensor, backend tensor.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if len(t.operations) == 0 {
		return nil, tensor.Statef("backward", "no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	produced := false
	for _, op := range t.operations {
		if op.Output() == root {
			produced = true
			break
		}
	}
	if !produced {
		return nil, tensor.Statef("backward", "tensor was not produced by a recorded operation")
	}

	// Gradient ops must not themselves land on the tape.
	was := t.recording
	t.recording = false
	defer func() {
		t.recording = was
	}()

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[root] = seed

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}

		inputGrads := op.Backward(outputGrad, backend)
		inputs := op.Inputs()
		for j, input := range inputs {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads, nil
}
