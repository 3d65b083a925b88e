package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRaw(t *testing.T, shape Shape, dtype DataType) *RawTensor {
	t.Helper()
	raw, err := NewRaw(shape, dtype, CPU)
	require.NoError(t, err)
	return raw
}

func TestBound_Kinds(t *testing.T) {
	assert.True(t, NoBound().IsNone())
	assert.True(t, Bound{}.IsNone())
	assert.True(t, TensorBound(nil).IsNone())
	assert.Equal(t, BoundScalar, Scalar(0.5).Kind())
	assert.Equal(t, BoundScalar, ScalarInt(3).Kind())

	raw := mustRaw(t, Shape{5, 4}, Float32)
	b := TensorBound(raw)
	assert.Equal(t, BoundTensor, b.Kind())
	assert.Same(t, raw, b.Tensor())
	assert.Equal(t, Shape{5, 4}, b.Shape())
	assert.Equal(t, Shape{}, Scalar(1).Shape())

	assert.Equal(t, "none", NoBound().String())
	assert.Equal(t, "scalar(0.5)", Scalar(0.5).String())
	assert.Equal(t, "scalar(3)", ScalarInt(3).String())
	assert.Equal(t, "tensor(float32[5 4])", b.String())
}

func TestScalarValue(t *testing.T) {
	assert.Equal(t, int32(2), ScalarValue[int32](Scalar(2.7)))
	assert.Equal(t, int64(math.MaxInt64), ScalarValue[int64](ScalarInt(math.MaxInt64)))
	assert.Equal(t, int64(math.MaxInt64), ScalarValue[int64](Scalar(1e30)))
	assert.Equal(t, float32(0.25), ScalarValue[float32](Scalar(0.25)))
	assert.Equal(t, 2.5, Scalar(2.5).Float64())
}

func TestClipShape(t *testing.T) {
	x := mustRaw(t, Shape{4}, Float32)

	shape, err := ClipShape("clip", x, NoBound(), Scalar(1))
	require.NoError(t, err)
	assert.Equal(t, Shape{4}, shape)

	lo := mustRaw(t, Shape{5, 4}, Float32)
	hi := mustRaw(t, Shape{6, 5, 4}, Float32)
	shape, err = ClipShape("clip", x, TensorBound(lo), TensorBound(hi))
	require.NoError(t, err)
	assert.Equal(t, Shape{6, 5, 4}, shape)

	tests := []struct {
		name   string
		x      *RawTensor
		lo, hi Bound
		want   error
	}{
		{"nil input", nil, NoBound(), NoBound(), ErrUsage},
		{"uint8 input", mustRaw(t, Shape{4}, Uint8), NoBound(), NoBound(), ErrTypeMismatch},
		{"int16 input", mustRaw(t, Shape{4}, Int16), Scalar(0), NoBound(), ErrTypeMismatch},
		{"min dtype", x, TensorBound(mustRaw(t, Shape{4}, Int32)), NoBound(), ErrTypeMismatch},
		{"max dtype", x, NoBound(), TensorBound(mustRaw(t, Shape{4}, Float64)), ErrTypeMismatch},
		{"unbroadcastable", x, TensorBound(mustRaw(t, Shape{3}, Float32)), NoBound(), ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClipShape("clip", tt.x, tt.lo, tt.hi)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
