// Package nn implements neural network modules for the Flint ML Framework.
//
// Building blocks for constructing feed-forward classifiers:
//   - Module interface: base interface for all components
//   - Parameter: trainable tensors with gradient storage
//   - Linear: fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh, LogSoftmax
//   - Loss functions: NLL, CrossEntropy, MSE
//   - Sequential: container for stacking layers
//
// Design follows PyTorch's nn.Module, adapted for Go generics.
package nn

import (
	"github.com/flintml/flint/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(4, 16, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(16, 3, backend),
//	    nn.NewLogSoftmax[B](),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module output for the given input. Shape
	// requirements depend on the module; Linear expects
	// [batch_size, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, including those of
	// nested modules. Stateless modules return nil.
	Parameters() []*Parameter[B]

	// StateDict returns parameter names mapped to raw tensors, used
	// for checkpointing. Stateless modules return an empty map.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameter values from a state dictionary
	// previously produced by StateDict.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
