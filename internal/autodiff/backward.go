package autodiff

import (
	"github.com/flintml/flint/internal/tensor"
)

// BackwardCapable is satisfied by backends that carry a gradient tape.
// Backend implements it; generic code (trainers, optimizers) constrains
// on this instead of the concrete decorator type.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape.
func (b *Backend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of the scalar tensor t with respect to
// every tensor reached by the recorded graph, seeding with dL/dL = 1.
//
// Returns a ShapeError when t is not a scalar (call Sum or Mean first,
// or use BackwardWithGrad with an explicit seed), and a StateError when
// t was not produced by a recorded operation.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if t.NumElements() != 1 {
		return nil, tensor.Shapef("backward", "expected scalar output, got shape %v", t.Shape())
	}

	seed, err := onesLike(t.Raw(), backend.Device())
	if err != nil {
		return nil, err
	}
	return backend.GetTape().Backward(t.Raw(), seed, backend)
}

// BackwardWithGrad computes gradients of t seeded with an explicit
// output gradient. seed must match t's shape and dtype.
func BackwardWithGrad[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], seed *tensor.RawTensor, backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if !seed.Shape().Equal(t.Shape()) {
		return nil, tensor.Shapef("backward", "seed shape %v does not match output shape %v", seed.Shape(), t.Shape())
	}
	if seed.DType() != t.DType() {
		return nil, tensor.Statef("backward", "seed dtype %s does not match output dtype %s", seed.DType(), t.DType())
	}
	return backend.GetTape().Backward(t.Raw(), seed, backend)
}

func onesLike(t *tensor.RawTensor, device tensor.Device) (*tensor.RawTensor, error) {
	seed, err := tensor.NewRaw(t.Shape(), t.DType(), device)
	if err != nil {
		return nil, err
	}
	switch t.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		return nil, tensor.Statef("backward", "unsupported dtype %s", t.DType())
	}
	return seed, nil
}
