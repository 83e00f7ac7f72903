package nn

import (
	"fmt"
	"strings"

	"github.com/flintml/flint/internal/tensor"
)

// Sequential chains modules so that each module's output feeds the
// next module's input.
//
//	model := nn.NewSequential(
//	    nn.NewLinear(4, 16, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(16, 3, backend),
//	    nn.NewLogSoftmax[B](),
//	)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward applies all modules in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters collects trainable parameters from every module, in
// module order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the end of the sequence.
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at index, panicking with an IndexError
// when index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic(&tensor.IndexError{Op: "sequential", Index: index, Bound: len(s.modules)})
	}
	return s.modules[index]
}

// StateDict collects parameters from all modules, keyed by module
// index, e.g. "0.weight", "0.bias", "2.weight".
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict distributes index-prefixed entries back to the modules.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, module := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		sub := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if strings.HasPrefix(key, prefix) {
				sub[strings.TrimPrefix(key, prefix)] = raw
			}
		}
		if len(sub) == 0 {
			continue
		}
		if err := module.LoadStateDict(sub); err != nil {
			return fmt.Errorf("load module %d: %w", i, err)
		}
	}
	return nil
}
