package train

import (
	"github.com/flintml/flint/internal/tensor"
)

// Batch pairs a mini-batch of inputs with its class targets.
// Inputs is [batch_size, features] float32, Targets is [batch_size]
// int32 class indices.
type Batch[B tensor.Backend] struct {
	Inputs  *tensor.Tensor[float32, B]
	Targets *tensor.Tensor[int32, B]
}

// DataSource yields mini-batches for training or evaluation. An epoch
// visits batches 0 through NumBatches()-1 in order; sources that want
// per-epoch shuffling reshuffle inside Shuffle.
type DataSource[B tensor.Backend] interface {
	NumBatches() int
	Batch(i int) Batch[B]

	// Shuffle reorders samples before the next epoch. Implementations
	// that serve a fixed order may make this a no-op.
	Shuffle()
}
