package nn

import (
	"math"
	"math/rand"

	"github.com/flintml/flint/internal/tensor"
)

// rng drives all weight initialization in this package. Seeded with a
// fixed value so two models built the same way start identical; call
// Seed to change runs.
//
//nolint:gosec // math/rand is fine for weight initialization
var rng = rand.New(rand.NewSource(1))

// Seed reseeds the initialization RNG. Models constructed after the
// call are reproducible for the same seed.
func Seed(seed int64) {
	rng = rand.New(rand.NewSource(seed))
}

// LecunUniform initializes a tensor from U(-1/√fanIn, 1/√fanIn).
// This is the classic scheme for layers followed by saturating or
// piecewise-linear activations.
func LecunUniform[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	return uniform[B](bound, shape, backend)
}

// Xavier initializes a tensor from U(-√(6/(fanIn+fanOut)), +√(6/(fanIn+fanOut))),
// the Glorot scheme that keeps activation variance stable across layers.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return uniform[B](bound, shape, backend)
}

func uniform[B tensor.Backend](bound float64, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	raw, err := tensor.NewRaw(shape, tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return tensor.New[float32, B](raw, backend)
}

// Zeros creates a zero-filled float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a one-filled float32 tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a float32 tensor drawn from N(0, 1) using the package
// initialization RNG.
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, rng, backend)
}
