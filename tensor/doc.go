// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors and the clip operations on them.
//
// # Overview
//
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting of clip bounds
//   - Clip, ClipTensor, in-place clip and the clip gradient
//   - Typed errors (ErrTypeMismatch, ErrShapeMismatch, ErrUsage)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/clip/backend/cpu"
//	    "github.com/born-ml/clip/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Rand[float32](tensor.Shape{1, 9, 9, 4}, rand.New(rand.NewSource(1)), backend)
//	    y, err := x.Clip(tensor.Scalar(0.2), tensor.Scalar(0.8))
//	}
//
// # Supported Data Types
//
// Clip accepts float16, bfloat16, float32, float64, int32 and int64.
// Other dtypes (uint8, bool, int8, int16) exist for data interchange and
// are rejected by clip with ErrTypeMismatch.
//
// # Bounds
//
// A Bound is absent (NoBound), a scalar (Scalar, ScalarInt) converted to the
// input dtype, or a tensor (TensorBound) whose shape broadcasts with the
// input. The output shape is the broadcast of the input and both bounds:
//
//	x := tensor.Zeros[float32](tensor.Shape{4}, backend)     // (4)
//	lo := tensor.Zeros[float32](tensor.Shape{5, 4}, backend) // (5, 4)
//	hi := tensor.Ones[float32](tensor.Shape{6, 5, 4}, backend)
//	y, _ := x.ClipTensor(lo, hi)                            // (6, 5, 4)
//
// # Errors
//
// All errors wrap one of the sentinels and can be tested with errors.Is.
package tensor
