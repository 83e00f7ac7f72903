package cpu_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/flintml/flint/internal/backend/cpu"
	"github.com/flintml/flint/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestBinaryOps(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	defer a.ForceNonUnique()()
	defer b.ForceNonUnique()()

	assert.Equal(t, []float32{6, 8, 10, 12}, backend.Add(a, b).AsFloat32())
	assert.Equal(t, []float32{-4, -4, -4, -4}, backend.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{5, 12, 21, 32}, backend.Mul(a, b).AsFloat32())
	assert.InDeltaSlice(t, []float32{0.2, 1.0 / 3, 3.0 / 7, 0.5}, backend.Div(a, b).AsFloat32(), 1e-6)
}

func TestAddBroadcastRow(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	row := fromSlice(t, []float32{10, 20, 30}, tensor.Shape{1, 3})

	out := backend.Add(a, row)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestAddBroadcastColumn(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	col := fromSlice(t, []float32{100, 200}, tensor.Shape{2, 1})

	out := backend.Add(a, col)
	assert.Equal(t, []float32{101, 102, 103, 204, 205, 206}, out.AsFloat32())
}

func TestAddShapeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, make([]float32, 12), tensor.Shape{3, 4})
	b := fromSlice(t, make([]float32, 20), tensor.Shape{5, 4})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		var shapeErr *tensor.ShapeError
		require.ErrorAs(t, tensor.AsError(r), &shapeErr)
	}()
	backend.Add(a, b)
}

func TestMatMul(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

// TestMatMulAgainstGonum cross-checks random matmuls against a
// reference BLAS-style implementation.
func TestMatMulAgainstGonum(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))

	for _, dims := range [][3]int{{4, 5, 6}, {1, 7, 3}, {16, 16, 16}} {
		m, k, n := dims[0], dims[1], dims[2]

		aData := make([]float32, m*k)
		bData := make([]float32, k*n)
		aRef := make([]float64, m*k)
		bRef := make([]float64, k*n)
		for i := range aData {
			v := rng.NormFloat64()
			aData[i] = float32(v)
			aRef[i] = float64(aData[i])
		}
		for i := range bData {
			v := rng.NormFloat64()
			bData[i] = float32(v)
			bRef[i] = float64(bData[i])
		}

		out := backend.MatMul(
			fromSlice(t, aData, tensor.Shape{m, k}),
			fromSlice(t, bData, tensor.Shape{k, n}),
		)

		var want mat.Dense
		want.Mul(mat.NewDense(m, k, aRef), mat.NewDense(k, n, bRef))

		got := out.AsFloat32()
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				assert.InDelta(t, want.At(i, j), float64(got[i*n+j]), 1e-4,
					"mismatch at (%d,%d) for dims %v", i, j, dims)
			}
		}
	}
}

func TestMatMulInnerDimMismatchPanics(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, make([]float32, 6), tensor.Shape{2, 3})
	b := fromSlice(t, make([]float32, 8), tensor.Shape{4, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestTranspose2D(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose(a)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestReshape(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Reshape(a, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, out.AsFloat32())

	assert.Panics(t, func() { backend.Reshape(a, tensor.Shape{4, 2}) })
}

func TestExpLog(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{0, 1, 2}, tensor.Shape{3})

	exp := backend.Exp(a)
	assert.InDeltaSlice(t, []float32{1, float32(math.E), float32(math.Exp(2))}, exp.AsFloat32(), 1e-5)

	log := backend.Log(exp)
	assert.InDeltaSlice(t, []float32{0, 1, 2}, log.AsFloat32(), 1e-5)
}

func TestSumMean(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	sum := backend.Sum(a)
	assert.Equal(t, tensor.Shape{1}, sum.Shape())
	assert.Equal(t, float32(10), sum.AsFloat32()[0])

	mean := backend.Mean(a)
	assert.Equal(t, tensor.Shape{1}, mean.Shape())
	assert.Equal(t, float32(2.5), mean.AsFloat32()[0])
}

func TestInplaceFastPathRespectsSharing(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2}, tensor.Shape{2})
	b := fromSlice(t, []float32{3, 4}, tensor.Shape{2})

	// Shared buffer must not be overwritten.
	restore := a.ForceNonUnique()
	out := backend.Add(a, b)
	restore()

	assert.Equal(t, []float32{1, 2}, a.AsFloat32())
	assert.Equal(t, []float32{4, 6}, out.AsFloat32())
}
