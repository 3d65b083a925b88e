// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation of clip computations.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/clip/autodiff"
//	    "github.com/born-ml/clip/backend/cpu"
//	    "github.com/born-ml/clip/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x, _ := tensor.FromSlice([]float32{0, 0.5, 1}, tensor.Shape{3}, backend)
//	    y, _ := x.Clip(tensor.Scalar(0.2), tensor.Scalar(0.8)) // recorded on tape
//
//	    grads, err := autodiff.Backward(y, backend)
//	    dx := grads[x.Raw()] // [0 1 0]
//	}
//
// In-place clipping cannot be differentiated and fails with tensor.ErrUsage
// while the tape is recording.
package autodiff

import (
	"github.com/born-ml/clip/internal/autodiff"
	"github.com/born-ml/clip/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t via backpropagation, seeded with ones.
// It fails with tensor.ErrUsage when nothing was recorded.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(t, backend)
}
