package ops

import (
	"github.com/flintml/flint/internal/tensor"
)

// NLLOp represents the negative log-likelihood loss over a batch of
// log-probabilities:
//
//	loss = -1/N * Σ_i logProbs[i][targets[i]]
//
// logProbs is [N, C] float32 (typically the output of log-softmax) and
// targets is [N] with integer class indices. The output is a scalar.
//
// Backward pass: grad[i][targets[i]] = -outputGrad / N, zero elsewhere.
// Targets are constants, so only logProbs receives a gradient.
type NLLOp struct {
	inputs  []*tensor.RawTensor // [logProbs]
	output  *tensor.RawTensor   // scalar loss
	targets []int
}

// NLLForward computes the mean negative log-likelihood and returns the
// op ready for tape recording.
func NLLForward(logProbs, targets *tensor.RawTensor) *NLLOp {
	shape := logProbs.Shape()
	if len(shape) != 2 {
		panic(tensor.Shapef("nll_loss", "expected 2D log-probabilities, got %v", shape))
	}
	if logProbs.DType() != tensor.Float32 {
		panic(tensor.Statef("nll_loss", "unsupported dtype %s", logProbs.DType()))
	}
	tShape := targets.Shape()
	if len(tShape) != 1 {
		panic(tensor.Shapef("nll_loss", "expected 1D targets, got %v", tShape))
	}
	rows, cols := shape[0], shape[1]
	if tShape[0] != rows {
		panic(tensor.Shapef("nll_loss", "batch mismatch: %d log-probability rows, %d targets", rows, tShape[0]))
	}

	idx := make([]int, rows)
	switch targets.DType() {
	case tensor.Int32:
		for i, v := range targets.AsInt32() {
			idx[i] = int(v)
		}
	case tensor.Int64:
		for i, v := range targets.AsInt64() {
			idx[i] = int(v)
		}
	default:
		panic(tensor.Statef("nll_loss", "expected integer targets, got %s", targets.DType()))
	}

	lp := logProbs.AsFloat32()
	var sum float32
	for i, class := range idx {
		if class < 0 || class >= cols {
			panic(&tensor.IndexError{Op: "nll_loss", Index: class, Bound: cols})
		}
		sum += lp[i*cols+class]
	}

	output, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, logProbs.Device())
	if err != nil {
		panic(err)
	}
	output.AsFloat32()[0] = -sum / float32(rows)

	return &NLLOp{
		inputs:  []*tensor.RawTensor{logProbs},
		output:  output,
		targets: idx,
	}
}

// Backward scatters -outputGrad/N into the target column of each row.
func (op *NLLOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.inputs[0].Shape()
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, tensor.Float32, outputGrad.Device())
	if err != nil {
		panic(err)
	}

	scale := -outputGrad.AsFloat32()[0] / float32(rows)
	dst := grad.AsFloat32()
	for i, class := range op.targets {
		dst[i*cols+class] = scale
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the log-probability tensor. Targets are not part of
// the differentiable graph.
func (op *NLLOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the scalar loss tensor.
func (op *NLLOp) Output() *tensor.RawTensor {
	return op.output
}
