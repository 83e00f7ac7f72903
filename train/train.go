// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the training loop for Flint models.
//
// Example:
//
//	trainer := train.New[*autodiff.Backend[*cpu.Backend]](model, optimizer, backend)
//	losses, err := trainer.Fit(ctx, loader, train.Config{Epochs: 10, LogEvery: 50})
package train

import (
	"github.com/flintml/flint/internal/autodiff"
	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/optim"
	"github.com/flintml/flint/internal/tensor"
	"github.com/flintml/flint/internal/train"
)

// Trainer drives mini-batch gradient descent for a classifier that
// outputs log-probabilities.
type Trainer[B autodiff.BackwardCapable] = train.Trainer[B]

// Config captures the knobs required by the training loop.
type Config = train.Config

// Batch pairs a mini-batch of inputs with its class targets.
type Batch[B tensor.Backend] = train.Batch[B]

// DataSource yields mini-batches for training or evaluation.
type DataSource[B tensor.Backend] = train.DataSource[B]

// Window accumulates per-step timing and loss stats between log lines.
type Window = train.Window

// Snapshot represents loggable training metrics.
type Snapshot = train.Snapshot

// New creates a Trainer.
func New[B autodiff.BackwardCapable](model nn.Module[B], optimizer optim.Optimizer, backend B) *Trainer[B] {
	return train.New(model, optimizer, backend)
}
