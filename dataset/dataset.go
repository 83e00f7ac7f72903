// Copyright 2025 Flint ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides synthetic datasets for Flint examples and
// tests.
package dataset

import (
	"github.com/flintml/flint/internal/dataset"
	"github.com/flintml/flint/internal/tensor"
)

// GaussianConfig describes a synthetic classification dataset.
type GaussianConfig = dataset.GaussianConfig

// Sample is one labeled data point.
type Sample = dataset.Sample

// Gaussian generates labeled points from a seeded Gaussian mixture
// with one cluster per class.
func Gaussian(cfg GaussianConfig) []Sample {
	return dataset.Gaussian(cfg)
}

// Loader serves samples as mini-batch tensors and satisfies the
// training loop's data source contract.
type Loader[B tensor.Backend] = dataset.Loader[B]

// NewLoader creates a Loader over samples.
func NewLoader[B tensor.Backend](samples []Sample, batchSize int, seed int64, backend B) *Loader[B] {
	return dataset.NewLoader(samples, batchSize, seed, backend)
}
