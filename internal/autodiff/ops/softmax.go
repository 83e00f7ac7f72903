package ops

import (
	"github.com/chewxy/math32"

	"github.com/flintml/flint/internal/tensor"
)

// LogSoftmaxOp represents a row-wise log-softmax over the last
// dimension of a 2D float32 tensor:
//
//	output[i][j] = input[i][j] - max_k(input[i][k]) - log(Σ_k exp(input[i][k] - max))
//
// The max shift keeps exp from overflowing for large logits. The
// backward pass uses the cached softmax probabilities:
//
//	grad[i][j] = outputGrad[i][j] - softmax[i][j] * Σ_k outputGrad[i][k]
type LogSoftmaxOp struct {
	inputs  []*tensor.RawTensor
	output  *tensor.RawTensor
	softmax []float32 // probabilities cached during the forward pass
}

// LogSoftmaxForward computes a numerically stable log-softmax along
// the last dimension and returns the op ready for tape recording.
func LogSoftmaxForward(input *tensor.RawTensor) *LogSoftmaxOp {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(tensor.Shapef("log_softmax", "expected 2D input, got %v", shape))
	}
	if input.DType() != tensor.Float32 {
		panic(tensor.Statef("log_softmax", "unsupported dtype %s", input.DType()))
	}

	output, err := tensor.NewRaw(shape, input.DType(), input.Device())
	if err != nil {
		panic(err)
	}

	rows, cols := shape[0], shape[1]
	in := input.AsFloat32()
	out := output.AsFloat32()
	probs := make([]float32, rows*cols)

	for i := 0; i < rows; i++ {
		row := in[i*cols : (i+1)*cols]

		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}

		var sum float32
		for j, v := range row {
			e := math32.Exp(v - max)
			probs[i*cols+j] = e
			sum += e
		}

		logSum := math32.Log(sum)
		for j, v := range row {
			out[i*cols+j] = v - max - logSum
			probs[i*cols+j] /= sum
		}
	}

	return &LogSoftmaxOp{
		inputs:  []*tensor.RawTensor{input},
		output:  output,
		softmax: probs,
	}
}

// Backward computes grad[i][j] = outputGrad[i][j] - softmax[i][j] * rowSum(outputGrad[i]).
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.inputs[0].Shape()
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, tensor.Float32, outputGrad.Device())
	if err != nil {
		panic(err)
	}

	og := outputGrad.AsFloat32()
	dst := grad.AsFloat32()
	for i := 0; i < rows; i++ {
		var rowSum float32
		for j := 0; j < cols; j++ {
			rowSum += og[i*cols+j]
		}
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			dst[idx] = og[idx] - op.softmax[idx]*rowSum
		}
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *LogSoftmaxOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the log-softmax output tensor.
func (op *LogSoftmaxOp) Output() *tensor.RawTensor {
	return op.output
}
