// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package static builds clip computations ahead of time and runs them later.
//
// A Program declares data inputs, possibly with -1 (any size) dimensions, and
// the operations on them. Dtype and shape errors are reported while the
// program is built, before any data is seen.
//
// Example:
//
//	var y *static.Var
//	p, err := static.Build("clip", func(p *static.Program) {
//	    x := p.MustData("x", tensor.Shape{-1, 9, 9, 4}, tensor.Float32)
//	    y = static.MustClip(x, 0.2, 0.8)
//	})
//	out, err := static.NewExecutor(cpu.New()).Run(p, map[string]*tensor.RawTensor{"x": images}, y)
package static

import (
	"github.com/born-ml/clip/internal/static"
	"github.com/born-ml/clip/internal/tensor"
)

// Program holds the variables of one static computation.
type Program = static.Program

// Var is a symbolic tensor of a Program.
type Var = static.Var

// Executor runs programs on a backend.
type Executor = static.Executor

// NewProgram creates an empty program.
func NewProgram(name string) *Program {
	return static.NewProgram(name)
}

// Build creates a program and runs fn to populate it. Errors raised by the
// Must* constructors inside fn are returned instead of panicking.
func Build(name string, fn func(p *Program)) (*Program, error) {
	return static.Build(name, fn)
}

// Clip adds clip(x, lo, hi) to x's program.
//
// x must be a *Var. Each bound is nil, a Go number or a *Var of the same
// program and dtype as x. Anything else fails with tensor.ErrUsage.
func Clip(x any, lo, hi any) (*Var, error) {
	return static.Clip(x, lo, hi)
}

// MustClip is Clip that panics on error.
func MustClip(x any, lo, hi any) *Var {
	return static.MustClip(x, lo, hi)
}

// ClipTensor adds clip_tensor(x, lo, hi) with both bounds as variables.
func ClipTensor(x, lo, hi *Var) (*Var, error) {
	return static.ClipTensor(x, lo, hi)
}

// MustClipTensor is ClipTensor that panics on error.
func MustClipTensor(x, lo, hi *Var) *Var {
	return static.MustClipTensor(x, lo, hi)
}

// ClipInplace adds clip_(x, lo, hi), which clips x's value in its own storage.
// Bounds that would broadcast x to a larger shape fail with
// tensor.ErrShapeMismatch. Fed tensors are copied before they are written.
func ClipInplace(x any, lo, hi any) (*Var, error) {
	return static.ClipInplace(x, lo, hi)
}

// MustClipInplace is ClipInplace that panics on error.
func MustClipInplace(x any, lo, hi any) *Var {
	return static.MustClipInplace(x, lo, hi)
}

// Cast adds a dtype conversion of x.
func Cast(x *Var, dtype tensor.DataType) (*Var, error) {
	return static.Cast(x, dtype)
}

// MustCast is Cast that panics on error.
func MustCast(x *Var, dtype tensor.DataType) *Var {
	return static.MustCast(x, dtype)
}

// Scale adds x * s.
func Scale(x *Var, s float64) (*Var, error) {
	return static.Scale(x, s)
}

// MustScale is Scale that panics on error.
func MustScale(x *Var, s float64) *Var {
	return static.MustScale(x, s)
}

// NewExecutor returns an executor that runs programs on backend.
func NewExecutor(backend tensor.Backend) *Executor {
	return static.NewExecutor(backend)
}
