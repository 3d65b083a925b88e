// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Clip kernels for float16, bfloat16, float32, float64, int32 and int64
//   - NumPy-compatible broadcasting of bounds
//   - Data-parallel execution over large tensors
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
//	    x, _ := tensor.FromSlice([]float32{-1, 0.5, 2}, tensor.Shape{3}, backend)
//	    y, err := x.Clip(tensor.Scalar(0), tensor.Scalar(1)) // [0, 0.5, 1]
//	}
//
// # Parallelism
//
// Kernels over more than Config.MinChunkSize elements are split into
// disjoint chunks, one per worker. Results do not depend on the worker
// count. Use NewWithConfig(Sequential()) to keep every call on the calling
// goroutine.
//
// # Thread Safety
//
// A Backend holds no mutable state and may be shared between goroutines.
// Concurrent ClipInplace calls on tensors sharing a buffer race.
package cpu
