package optim

import (
	"fmt"

	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param = param - lr * velocity
//
// Updates run as plain slice loops directly on the parameter buffers,
// so they never land on a gradient tape regardless of recording state.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]][]float32
	backend    B
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate, default 0.01
	Momentum float32 // momentum factor in [0, 1), default 0
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float32),
		backend:    backend,
	}
}

// Step applies one gradient descent update to every parameter holding
// a gradient. Returns a StateError when no parameter has one.
func (s *SGD[B]) Step() error {
	stepped := false
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		if !grad.Shape().Equal(param.Tensor().Shape()) {
			return tensor.Shapef("sgd_step",
				"parameter %q: gradient shape %v does not match parameter shape %v",
				param.Name(), grad.Shape(), param.Tensor().Shape())
		}

		if s.momentum == 0 {
			s.update(param, grad.Data())
		} else {
			s.updateWithMomentum(param, grad.Data())
		}
		stepped = true
	}

	if !stepped {
		return tensor.Statef("sgd_step", "no parameter holds a gradient (did you run Backward and AccumulateGradients?)")
	}
	return nil
}

func (s *SGD[B]) update(param *nn.Parameter[B], grad []float32) {
	data := param.Tensor().Data()
	for i := range data {
		data[i] -= s.lr * grad[i]
	}
}

func (s *SGD[B]) updateWithMomentum(param *nn.Parameter[B], grad []float32) {
	velocity, ok := s.velocities[param]
	if !ok {
		velocity = make([]float32, param.Tensor().NumElements())
		s.velocities[param] = velocity
	}

	data := param.Tensor().Data()
	for i := range data {
		velocity[i] = s.momentum*velocity[i] + grad[i]
		data[i] -= s.lr * velocity[i]
	}
}

// ZeroGrad clears the stored gradient of every parameter.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate, for scheduling.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// StateDict exports the momentum velocity buffers, keyed
// "velocity.{param_index}". Empty when momentum is disabled.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}

	for i, param := range s.params {
		velocity, ok := s.velocities[param]
		if !ok {
			continue
		}
		raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, s.backend.Device())
		if err != nil {
			continue
		}
		copy(raw.AsFloat32(), velocity)
		stateDict[fmt.Sprintf("velocity.%d", i)] = raw
	}
	return stateDict
}

// LoadStateDict restores momentum velocity buffers. Ignored when
// momentum is disabled. Buffers absent from the dict are initialized
// lazily on the next Step.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}

	s.velocities = make(map[*nn.Parameter[B]][]float32)
	for i, param := range s.params {
		raw, ok := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !raw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), raw.Shape())
		}
		velocity := make([]float32, raw.NumElements())
		copy(velocity, raw.AsFloat32())
		s.velocities[param] = velocity
	}
	return nil
}
