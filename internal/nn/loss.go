package nn

import (
	"github.com/flintml/flint/internal/tensor"
)

// NLLBackend is satisfied by backends that implement the negative
// log-likelihood op.
type NLLBackend interface {
	NLLLoss(logProbs, targets *tensor.RawTensor) *tensor.RawTensor
}

// NLLLoss computes the mean negative log-likelihood of log-probability
// rows against integer class targets:
//
//	loss = -1/N * Σ_i logProbs[i][targets[i]]
//
// Pair it with a LogSoftmax output layer. The result is a scalar
// suitable for backpropagation.
type NLLLoss[B tensor.Backend] struct {
	backend B
}

// NewNLLLoss creates an NLL loss function.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return &NLLLoss[B]{backend: backend}
}

// Forward computes the scalar loss. logProbs is [batch, classes]
// float32, targets is [batch] int32 class indices.
func (n *NLLLoss[B]) Forward(logProbs *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	nb, ok := any(n.backend).(NLLBackend)
	if !ok {
		panic(tensor.Statef("nll_loss", "backend %s does not implement NLLLoss (wrap it with autodiff.New)", n.backend.Name()))
	}
	return tensor.New[float32, B](nb.NLLLoss(logProbs.Raw(), targets.Raw()), n.backend)
}

// CrossEntropyLoss fuses log-softmax and negative log-likelihood:
//
//	loss = -1/N * Σ_i log_softmax(logits)[i][targets[i]]
//
// Use it when the model emits raw logits rather than log-probabilities.
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewCrossEntropyLoss creates a cross-entropy loss function.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward computes the scalar loss from raw logits [batch, classes]
// and int32 class targets [batch].
func (c *CrossEntropyLoss[B]) Forward(logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	lb, lok := any(c.backend).(LogSoftmaxBackend)
	nb, nok := any(c.backend).(NLLBackend)
	if !lok || !nok {
		panic(tensor.Statef("cross_entropy", "backend %s does not implement LogSoftmax/NLLLoss (wrap it with autodiff.New)", c.backend.Name()))
	}
	logProbs := lb.LogSoftmax(logits.Raw())
	return tensor.New[float32, B](nb.NLLLoss(logProbs, targets.Raw()), c.backend)
}

// MSELoss computes mean squared error, loss = mean((pred - target)²).
// Built from differentiable ops so gradients flow to predictions.
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates an MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{backend: backend}
}

// Forward computes the scalar loss. Predictions and targets must have
// the same shape.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(tensor.Shapef("mse_loss", "predictions %v and targets %v must match", predictions.Shape(), targets.Shape()))
	}
	diff := predictions.Sub(targets)
	return diff.Mul(diff).Mean()
}

// Accuracy returns the fraction of rows whose arg-max class matches
// the target. Works on logits or log-probabilities, since both are
// monotone in the class score.
func Accuracy[B tensor.Backend](scores *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(tensor.Shapef("accuracy", "expected 2D scores, got %v", shape))
	}
	rows, cols := shape[0], shape[1]
	tShape := targets.Shape()
	if len(tShape) != 1 || tShape[0] != rows {
		panic(tensor.Shapef("accuracy", "expected %d targets, got shape %v", rows, tShape))
	}

	data := scores.Raw().AsFloat32()
	labels := targets.Raw().AsInt32()
	correct := 0
	for i := 0; i < rows; i++ {
		best := 0
		row := data[i*cols : (i+1)*cols]
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if int32(best) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}
