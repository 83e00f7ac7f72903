// Package train implements the training loop for Flint models.
//
// A Trainer owns a model, a loss function, and an optimizer, and runs
// the canonical step order for each mini-batch:
//
//  1. optimizer.ZeroGrad() and tape.Clear()
//  2. forward pass
//  3. loss computation
//  4. backward pass, accumulating gradients onto parameters
//  5. optimizer.Step()
//
// Tensor ops panic typed errors on misuse; the trainer recovers those
// and returns them as ordinary errors, so a shape mismatch in a batch
// fails the Fit call instead of crashing the process.
package train

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/flintml/flint/internal/autodiff"
	"github.com/flintml/flint/internal/nn"
	"github.com/flintml/flint/internal/optim"
	"github.com/flintml/flint/internal/tensor"
)

// Config captures the knobs required by the training loop.
type Config struct {
	Epochs   int
	LogEvery int // steps between log lines, 0 disables logging
}

// Trainer drives mini-batch gradient descent for a classifier that
// outputs log-probabilities.
type Trainer[B autodiff.BackwardCapable] struct {
	model     nn.Module[B]
	loss      *nn.NLLLoss[B]
	optimizer optim.Optimizer
	backend   B
}

// New creates a Trainer.
func New[B autodiff.BackwardCapable](model nn.Module[B], optimizer optim.Optimizer, backend B) *Trainer[B] {
	return &Trainer[B]{
		model:     model,
		loss:      nn.NewNLLLoss(backend),
		optimizer: optimizer,
		backend:   backend,
	}
}

// Fit trains the model for cfg.Epochs passes over source and returns
// the mean loss of each epoch. Training stops early when ctx is
// cancelled or a step fails.
func (t *Trainer[B]) Fit(ctx context.Context, source DataSource[B], cfg Config) ([]float64, error) {
	if cfg.Epochs <= 0 {
		return nil, errors.New("train: epochs must be > 0")
	}
	if source.NumBatches() == 0 {
		return nil, errors.New("train: data source has no batches")
	}

	epochLosses := make([]float64, 0, cfg.Epochs)
	var window Window
	step := 0

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		source.Shuffle()

		var epochLoss float64
		for i := 0; i < source.NumBatches(); i++ {
			select {
			case <-ctx.Done():
				return epochLosses, ctx.Err()
			default:
			}

			startData := time.Now()
			batch := source.Batch(i)
			dataTime := time.Since(startData)

			startCompute := time.Now()
			loss, err := t.trainStep(batch)
			if err != nil {
				return epochLosses, err
			}
			computeTime := time.Since(startCompute)

			epochLoss += loss
			step++
			window.Record(batch.Inputs.Shape()[0], dataTime, computeTime, loss)

			if cfg.LogEvery > 0 && step%cfg.LogEvery == 0 {
				snap := window.Snapshot()
				log.Printf("epoch=%d step=%d samples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f",
					epoch,
					step,
					snap.SamplesPerSec,
					snap.AvgDataMS,
					snap.AvgComputeMS,
					snap.LastLoss,
				)
			}
		}

		epochLosses = append(epochLosses, epochLoss/float64(source.NumBatches()))
	}

	return epochLosses, nil
}

// trainStep runs the five-step training sequence on one batch.
func (t *Trainer[B]) trainStep(batch Batch[B]) (loss float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e := tensor.AsError(r); e != nil {
				err = e
				return
			}
			panic(r)
		}
	}()

	t.optimizer.ZeroGrad()
	tape := t.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer tape.StopRecording()

	output := t.model.Forward(batch.Inputs)
	lossTensor := t.loss.Forward(output, batch.Targets)

	grads, err := autodiff.Backward(lossTensor, t.backend)
	if err != nil {
		return 0, err
	}
	nn.AccumulateGradients(t.model.Parameters(), grads, t.backend)

	if err := t.optimizer.Step(); err != nil {
		return 0, err
	}
	return float64(lossTensor.Item()), nil
}

// Evaluate runs the model over source without recording gradients and
// returns the mean loss and accuracy.
func (t *Trainer[B]) Evaluate(ctx context.Context, source DataSource[B]) (meanLoss, accuracy float64, err error) {
	if source.NumBatches() == 0 {
		return 0, 0, errors.New("train: data source has no batches")
	}

	defer func() {
		if r := recover(); r != nil {
			if e := tensor.AsError(r); e != nil {
				err = e
				return
			}
			panic(r)
		}
	}()

	var lossSum float64
	var correct, total float64
	tape := t.backend.GetTape()

	for i := 0; i < source.NumBatches(); i++ {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		default:
		}

		batch := source.Batch(i)
		var output *tensor.Tensor[float32, B]
		tape.WithoutRecording(func() {
			output = t.model.Forward(batch.Inputs)
		})

		lossTensor := t.loss.Forward(output, batch.Targets)
		lossSum += float64(lossTensor.Item())

		n := float64(batch.Inputs.Shape()[0])
		correct += nn.Accuracy(output, batch.Targets) * n
		total += n
	}

	return lossSum / float64(source.NumBatches()), correct / total, nil
}

// Predict returns class probabilities for a batch of inputs, without
// recording gradients. The model must output log-probabilities.
func (t *Trainer[B]) Predict(inputs *tensor.Tensor[float32, B]) (probs *tensor.Tensor[float32, B], err error) {
	defer func() {
		if r := recover(); r != nil {
			if e := tensor.AsError(r); e != nil {
				err = e
				return
			}
			panic(r)
		}
	}()

	t.backend.GetTape().WithoutRecording(func() {
		probs = t.model.Forward(inputs).Exp()
	})
	return probs, nil
}
