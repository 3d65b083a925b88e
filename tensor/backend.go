// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/clip/internal/tensor"

// Backend defines the interface that all compute backends must implement.
//
// Implementations:
//   - backend/cpu: Pure Go with data-parallel kernels
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	y, err := backend.Clip(x, tensor.Scalar(0.2), tensor.NoBound())
type Backend interface {
	// Clip bounds every element of x to [lo, hi] with broadcasting.
	Clip(x *RawTensor, lo, hi Bound) (*RawTensor, error)
	// ClipTensor is Clip with both bounds given as tensors.
	ClipTensor(x, lo, hi *RawTensor) (*RawTensor, error)
	// ClipInplace writes the clip of x into x's own storage.
	ClipInplace(x *RawTensor, lo, hi Bound) error
	// ClipGrad returns the gradient of Clip with respect to x.
	ClipGrad(x *RawTensor, lo, hi Bound, grad *RawTensor) (*RawTensor, error)

	// Element-wise helpers.
	Add(a, b *RawTensor) (*RawTensor, error)
	MulScalar(x *RawTensor, scalar float64) (*RawTensor, error)
	Cast(x *RawTensor, dtype DataType) (*RawTensor, error)
	SumTo(x *RawTensor, shape Shape) (*RawTensor, error)

	// Metadata.
	Name() string
	Device() Device
}

// Compile-time checks that the public and internal interfaces stay in sync.
var (
	_ Backend        = tensor.Backend(nil)
	_ tensor.Backend = Backend(nil)
)
