// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/clip/internal/backend/cpu"
	"github.com/born-ml/clip/internal/parallel"
	"github.com/born-ml/clip/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of all tensor operations.
// Large element-wise kernels are split across worker goroutines.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Config controls how kernels are split across goroutines.
type Config = parallel.Config

// DefaultConfig returns a config using every CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential returns a config that runs every kernel on the calling goroutine.
func Sequential() Config {
	return parallel.Sequential()
}

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/clip/backend/cpu"
//	    "github.com/born-ml/clip/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.Sequential())
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
