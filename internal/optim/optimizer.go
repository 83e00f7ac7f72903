// Package optim implements optimization algorithms for training
// neural networks.
//
// Optimizers read gradients stored on nn.Parameter values and update
// the parameter tensors in place. The expected training loop order is:
//
//	optimizer.ZeroGrad()
//	tape.Clear()
//	output := model.Forward(input)
//	loss := lossFn.Forward(output, targets)
//	grads, err := autodiff.Backward(loss, backend)
//	nn.AccumulateGradients(model.Parameters(), grads, backend)
//	err = optimizer.Step()
package optim

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to every parameter that holds
	// a gradient. Returns a StateError when no parameter does, which
	// usually means Backward was skipped or ZeroGrad was called too
	// early.
	Step() error

	// ZeroGrad clears the stored gradient of every parameter. Call
	// before each forward/backward pass so gradients from different
	// batches do not mix.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config holds settings shared by all optimizers.
type Config struct {
	LR float32
}
