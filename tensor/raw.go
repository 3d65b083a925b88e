// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/clip/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Typed data access via AsFloat32(), AsInt64(), AsBFloat16(), etc.
//   - Buffer sharing via Clone() and deep copies via Copy()
//   - Reference counting via Release() and IsUnique()
//
// Most users should use the high-level Tensor[T, B] type instead.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()
//	view := raw.Clone() // shares the buffer
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromData creates a raw tensor holding a copy of data.
func FromData[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromData(data, shape, device)
}

// Data returns the elements of r as a []T sharing r's buffer.
// It panics if T does not match r's dtype.
func Data[T DType](r *RawTensor) []T {
	return tensor.Data[T](r)
}
