package nn

import (
	"github.com/flintml/flint/internal/tensor"
)

// ReLUBackend is satisfied by backends that implement the ReLU op.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is satisfied by backends that implement the Sigmoid op.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// TanhBackend is satisfied by backends that implement the Tanh op.
type TanhBackend interface {
	Tanh(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU applies f(x) = max(0, x) element-wise. It has no trainable
// parameters and preserves the input shape.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies the activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	rb, ok := any(backend).(ReLUBackend)
	if !ok {
		panic(tensor.Statef("relu", "backend %s does not implement ReLU (wrap it with autodiff.New)", backend.Name()))
	}
	return tensor.New[float32, B](rb.ReLU(input.Raw()), backend)
}

// Parameters returns nil.
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (r *ReLU[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// Sigmoid applies σ(x) = 1/(1+exp(-x)) element-wise, squashing values
// into (0, 1).
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the activation.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	sb, ok := any(backend).(SigmoidBackend)
	if !ok {
		panic(tensor.Statef("sigmoid", "backend %s does not implement Sigmoid (wrap it with autodiff.New)", backend.Name()))
	}
	return tensor.New[float32, B](sb.Sigmoid(input.Raw()), backend)
}

// Parameters returns nil.
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (s *Sigmoid[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// Tanh applies the hyperbolic tangent element-wise, squashing values
// into (-1, 1).
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies the activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	tb, ok := any(backend).(TanhBackend)
	if !ok {
		panic(tensor.Statef("tanh", "backend %s does not implement Tanh (wrap it with autodiff.New)", backend.Name()))
	}
	return tensor.New[float32, B](tb.Tanh(input.Raw()), backend)
}

// Parameters returns nil.
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (t *Tanh[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}
