package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend satisfies the Backend metadata methods for tests that
// never dispatch compute.
type fakeBackend struct{}

func (fakeBackend) Add(a, b *RawTensor) *RawTensor                 { panic("unused") }
func (fakeBackend) Sub(a, b *RawTensor) *RawTensor                 { panic("unused") }
func (fakeBackend) Mul(a, b *RawTensor) *RawTensor                 { panic("unused") }
func (fakeBackend) Div(a, b *RawTensor) *RawTensor                 { panic("unused") }
func (fakeBackend) MatMul(a, b *RawTensor) *RawTensor              { panic("unused") }
func (fakeBackend) Reshape(t *RawTensor, shape Shape) *RawTensor   { panic("unused") }
func (fakeBackend) Transpose(t *RawTensor, axes ...int) *RawTensor { panic("unused") }
func (fakeBackend) Exp(x *RawTensor) *RawTensor                    { panic("unused") }
func (fakeBackend) Log(x *RawTensor) *RawTensor                    { panic("unused") }
func (fakeBackend) Sum(x *RawTensor) *RawTensor                    { panic("unused") }
func (fakeBackend) Mean(x *RawTensor) *RawTensor                   { panic("unused") }
func (fakeBackend) Name() string                                   { return "fake" }
func (fakeBackend) Device() Device                                 { return CPU }

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, fakeBackend{})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, Float32, x.DType())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Data())
}

func TestFromSliceCountMismatch(t *testing.T) {
	_, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}, fakeBackend{})
	require.Error(t, err)

	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestAtSet(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, fakeBackend{})
	require.NoError(t, err)

	assert.Equal(t, float32(6), x.At(1, 2))
	x.Set(42, 0, 1)
	assert.Equal(t, float32(42), x.At(0, 1))
}

func TestAtOutOfRange(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, fakeBackend{})
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		var indexErr *IndexError
		require.ErrorAs(t, AsError(r), &indexErr)
		assert.Equal(t, 2, indexErr.Index)
		assert.Equal(t, 2, indexErr.Bound)
	}()
	x.At(0, 2)
}

func TestItem(t *testing.T) {
	x, err := FromSlice([]float32{3.5}, Shape{1}, fakeBackend{})
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), x.Item())
}

func TestItemNonScalarPanics(t *testing.T) {
	x, err := FromSlice([]float32{1, 2}, Shape{2}, fakeBackend{})
	require.NoError(t, err)
	assert.Panics(t, func() { x.Item() })
}

func TestCloneSharesBuffer(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3}, Shape{3}, fakeBackend{})
	require.NoError(t, err)
	require.True(t, x.Raw().IsUnique())

	clone := x.Clone()
	assert.False(t, x.Raw().IsUnique())
	assert.Equal(t, x.Data(), clone.Data())

	clone.Raw().Release()
	assert.True(t, x.Raw().IsUnique())
}

func TestForceNonUnique(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32, CPU)
	require.NoError(t, err)
	require.True(t, raw.IsUnique())

	restore := raw.ForceNonUnique()
	assert.False(t, raw.IsUnique())
	restore()
	assert.True(t, raw.IsUnique())
}

func TestCreation(t *testing.T) {
	zeros := Zeros[float32](Shape{2, 2}, fakeBackend{})
	assert.Equal(t, []float32{0, 0, 0, 0}, zeros.Data())

	ones := Ones[float32](Shape{3}, fakeBackend{})
	assert.Equal(t, []float32{1, 1, 1}, ones.Data())

	full := Full[float64](Shape{2}, 2.5, fakeBackend{})
	assert.Equal(t, []float64{2.5, 2.5}, full.Data())
}

func TestRandnDeterministic(t *testing.T) {
	a := Randn[float32](Shape{32}, rand.New(rand.NewSource(9)), fakeBackend{})
	b := Randn[float32](Shape{32}, rand.New(rand.NewSource(9)), fakeBackend{})
	assert.Equal(t, a.Data(), b.Data())

	c := Randn[float32](Shape{32}, rand.New(rand.NewSource(10)), fakeBackend{})
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestSetShape(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)

	raw.SetShape(Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, raw.Shape())

	assert.Panics(t, func() { raw.SetShape(Shape{4, 2}) })
}

func TestRequireGradAndDetach(t *testing.T) {
	x, err := FromSlice([]float32{1, 2}, Shape{2}, fakeBackend{})
	require.NoError(t, err)
	assert.False(t, x.RequiresGrad())

	assert.Same(t, x, x.RequireGrad())
	assert.True(t, x.RequiresGrad())

	d := x.Detach()
	assert.False(t, d.RequiresGrad())
	assert.Same(t, x.Raw(), d.Raw(), "detached view shares the buffer")
	assert.True(t, x.RequiresGrad(), "annotation on the original survives")
}
