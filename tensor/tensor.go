// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/clip/internal/tensor"
)

// DType is a constraint for tensor element types.
type DType = tensor.DType

// DataType represents the runtime element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Bool     DataType = tensor.Bool
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Int8     DataType = tensor.Int8
	Int16    DataType = tensor.Int16
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU  Device = tensor.CPU
	CUDA Device = tensor.CUDA
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a generic type-safe tensor.
//
// T is the element type and B the backend computing its operations.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 1.5, backend)
//	y, err := x.Clip(tensor.Scalar(0), tensor.Scalar(1))
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Errors returned by tensor operations. Test with errors.Is.
var (
	ErrTypeMismatch  = tensor.ErrTypeMismatch
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrUsage         = tensor.ErrUsage
)

// ParseDataType returns the DataType named name ("float32", "bfloat16", ...).
func ParseDataType(name string) (DataType, bool) {
	return tensor.ParseDataType(name)
}

// DataTypeOf returns the DataType of T.
func DataTypeOf[T DType]() DataType {
	return tensor.DataTypeOf[T]()
}

// BroadcastShapes returns the broadcast of a and b, and whether any
// broadcasting was needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// Creation functions

// New wraps raw as a typed tensor on backend b.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// FromSlice creates a tensor from data laid out in row-major order.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, rng, b)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// Arange creates a 1-D tensor with values [start, start+1, ..., end-1].
func Arange[T DType, B Backend](start, end int, b B) *Tensor[T, B] {
	return tensor.Arange[T, B](start, end, b)
}

// Cast converts t to element type U.
//
// Example:
//
//	ints, err := tensor.Cast[int32](x)
func Cast[U, T DType, B Backend](t *Tensor[T, B]) (*Tensor[U, B], error) {
	return tensor.Cast[U](t)
}
