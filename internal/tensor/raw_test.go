package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataType(t *testing.T) {
	sizes := map[DataType]int{
		Float32: 4, Float64: 8, Int32: 4, Int64: 8, Uint8: 1,
		Bool: 1, Float16: 2, BFloat16: 2, Int8: 1, Int16: 2,
	}
	for dt, size := range sizes {
		assert.Equal(t, size, dt.Size(), dt.String())
		parsed, ok := ParseDataType(dt.String())
		assert.True(t, ok, dt.String())
		assert.Equal(t, dt, parsed)
	}
	_, ok := ParseDataType("unknown")
	assert.False(t, ok)
	assert.False(t, DataType(42).Valid())
	assert.Panics(t, func() { DataType(42).Size() })

	for _, dt := range []DataType{Float16, BFloat16, Float32, Float64, Int32, Int64} {
		assert.True(t, dt.Clippable(), dt.String())
	}
	for _, dt := range []DataType{Uint8, Bool, Int8, Int16} {
		assert.False(t, dt.Clippable(), dt.String())
	}
	assert.True(t, BFloat16.IsFloat())
	assert.False(t, Int64.IsFloat())
}

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, raw.Shape())
	assert.Equal(t, []int{3, 1}, raw.Strides())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, raw.AsFloat32())
	assert.True(t, raw.IsUnique())

	_, err = NewRaw(Shape{2, 0}, Float32, CPU)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromData(t *testing.T) {
	data := []int64{1, 2, 3, 4}
	raw, err := FromData(data, Shape{2, 2}, CPU)
	require.NoError(t, err)
	assert.Equal(t, Int64, raw.DType())
	data[0] = 100
	assert.Equal(t, []int64{1, 2, 3, 4}, raw.AsInt64())

	_, err = FromData([]float32{1, 2, 3}, Shape{2, 2}, CPU)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	assert.Panics(t, func() { Data[int32](raw) })
}

func TestRawTensor_CloneAndCopy(t *testing.T) {
	raw, err := FromData([]float32{1, 2, 3, 4}, Shape{4}, CPU)
	require.NoError(t, err)

	alias := raw.Clone()
	assert.True(t, alias.SharesBuffer(raw))
	assert.False(t, raw.IsUnique())
	alias.AsFloat32()[0] = 9
	assert.Equal(t, float32(9), raw.AsFloat32()[0])

	alias.Release()
	assert.True(t, raw.IsUnique())

	deep := raw.Copy()
	assert.False(t, deep.SharesBuffer(raw))
	deep.AsFloat32()[1] = -1
	assert.Equal(t, float32(2), raw.AsFloat32()[1])
}

func TestRawTensor_Reshaped(t *testing.T) {
	raw, err := FromData([]int32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	require.NoError(t, err)

	view, err := raw.Reshaped(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, view.Shape())
	assert.Equal(t, []int{2, 1}, view.Strides())
	assert.True(t, view.SharesBuffer(raw))
	assert.Equal(t, Shape{2, 3}, raw.Shape())

	_, err = raw.Reshaped(Shape{4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
