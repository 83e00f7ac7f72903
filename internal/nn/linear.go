package nn

import (
	"fmt"

	"github.com/flintml/flint/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ Wᵀ + b.
//
//   - x: input, shape [batch_size, in_features]
//   - W: weight, shape [out_features, in_features]
//   - b: bias, shape [out_features]
//   - y: output, shape [batch_size, out_features]
//
// Weight and bias are both initialized from U(-1/√in_features, +1/√in_features).
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B]
	bias        *Parameter[B]
	backend     B
}

// NewLinear creates a Linear layer with freshly initialized parameters.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(tensor.Shapef("linear", "feature counts must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	weight := NewParameter("weight",
		LecunUniform(inFeatures, tensor.Shape{outFeatures, inFeatures}, backend))
	bias := NewParameter("bias",
		LecunUniform(inFeatures, tensor.Shape{outFeatures}, backend))

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ Wᵀ + b.
//
// Panics with a ShapeError when the input is not 2D or its feature
// dimension does not match in_features.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(tensor.Shapef("linear", "expected 2D input [batch, features], got %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(tensor.Shapef("linear", "expected %d input features, got %d", l.inFeatures, shape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	wT := l.weight.Tensor().Transpose()
	output := input.MatMul(wT)

	// Reshape bias to [1, out] so broadcasting adds it to every row.
	b := l.bias.Tensor().Reshape(1, l.outFeatures)
	return output.Add(b)
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns the layer's parameters keyed by name.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
		"bias":   l.bias.Tensor().Raw(),
	}
}

// LoadStateDict copies weight and bias values from a state dictionary.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := l.loadParam(stateDict, "weight", l.weight, tensor.Shape{l.outFeatures, l.inFeatures}); err != nil {
		return err
	}
	return l.loadParam(stateDict, "bias", l.bias, tensor.Shape{l.outFeatures})
}

func (l *Linear[B]) loadParam(stateDict map[string]*tensor.RawTensor, name string, p *Parameter[B], want tensor.Shape) error {
	raw, ok := stateDict[name]
	if !ok {
		return fmt.Errorf("missing %s in state dict", name)
	}
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", name, want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", name, raw.DType())
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}
