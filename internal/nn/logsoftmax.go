package nn

import (
	"github.com/flintml/flint/internal/tensor"
)

// LogSoftmaxBackend is satisfied by backends that implement the
// LogSoftmax op.
type LogSoftmaxBackend interface {
	LogSoftmax(*tensor.RawTensor) *tensor.RawTensor
}

// LogSoftmax applies a numerically stable log-softmax along the last
// dimension of a 2D input [batch_size, num_classes]. Each output row
// holds log-probabilities: exponentiated, it sums to 1.
//
// Typically the final layer of a classifier, paired with NLLLoss.
type LogSoftmax[B tensor.Backend] struct{}

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return &LogSoftmax[B]{}
}

// Forward computes row-wise log-probabilities.
func (l *LogSoftmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	lb, ok := any(backend).(LogSoftmaxBackend)
	if !ok {
		panic(tensor.Statef("log_softmax", "backend %s does not implement LogSoftmax (wrap it with autodiff.New)", backend.Name()))
	}
	return tensor.New[float32, B](lb.LogSoftmax(input.Raw()), backend)
}

// Parameters returns nil.
func (l *LogSoftmax[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (l *LogSoftmax[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (l *LogSoftmax[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}
