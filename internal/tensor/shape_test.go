package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 1, Shape{1}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1, 3}.Validate())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2, 3, 1}))
}

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{5}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
	}{
		{"same shape", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false},
		{"row vector", Shape{4, 3}, Shape{1, 3}, Shape{4, 3}, true},
		{"missing dim", Shape{4, 3}, Shape{3}, Shape{4, 3}, true},
		{"scalar", Shape{2, 3}, Shape{1}, Shape{2, 3}, true},
		{"both stretch", Shape{4, 1}, Shape{1, 3}, Shape{4, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	_, _, err := BroadcastShapes(Shape{3, 4}, Shape{5, 4})
	require.Error(t, err)

	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
