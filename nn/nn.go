// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks for the Flint ML
// framework: layers, activations, loss functions, and containers.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewSequential(
//	    nn.NewLinear(4, 16, backend),
//	    nn.NewReLU[*autodiff.Backend[*cpu.Backend]](),
//	    nn.NewLinear(16, 3, backend),
//	    nn.NewLogSoftmax[*autodiff.Backend[*cpu.Backend]](),
//	)
package nn

import (
	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a trainable tensor with gradient storage.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a trainable parameter from an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// AccumulateGradients distributes gradients from a backward-pass
// result map into the matching parameters.
func AccumulateGradients[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor, backend B) {
	nn.AccumulateGradients(params, grads, backend)
}

// Linear is a fully connected layer computing y = x @ Wᵀ + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with freshly initialized parameters.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid applies the logistic function element-wise.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// LogSoftmax applies a numerically stable log-softmax along the last
// dimension of a 2D input.
type LogSoftmax[B tensor.Backend] = nn.LogSoftmax[B]

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return nn.NewLogSoftmax[B]()
}

// Sequential chains modules so that each output feeds the next input.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NLLLoss computes the mean negative log-likelihood of log-probability
// rows against integer class targets.
type NLLLoss[B tensor.Backend] = nn.NLLLoss[B]

// NewNLLLoss creates an NLL loss function.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return nn.NewNLLLoss(backend)
}

// CrossEntropyLoss fuses log-softmax and negative log-likelihood.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates a cross-entropy loss function.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss(backend)
}

// MSELoss computes mean squared error.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates an MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewMSELoss(backend)
}

// Accuracy returns the fraction of rows whose arg-max class matches
// the target.
func Accuracy[B tensor.Backend](scores *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	return nn.Accuracy(scores, targets)
}

// Seed reseeds the weight initialization RNG, making model
// construction reproducible.
func Seed(seed int64) {
	nn.Seed(seed)
}

// LecunUniform initializes a tensor from U(-1/√fanIn, 1/√fanIn).
func LecunUniform[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.LecunUniform(fanIn, shape, backend)
}

// Xavier initializes a tensor with the Glorot uniform scheme.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}
