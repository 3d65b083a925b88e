// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/clip/internal/tensor"
)

// Bound is one side of a clip: absent, a scalar or a tensor.
type Bound = tensor.Bound

// BoundKind tells which variant a Bound holds.
type BoundKind = tensor.BoundKind

// Bound kinds.
const (
	BoundNone   BoundKind = tensor.BoundNone
	BoundScalar BoundKind = tensor.BoundScalar
	BoundTensor BoundKind = tensor.BoundTensor
)

// NoBound returns an absent bound: that side of the clip is unlimited.
func NoBound() Bound {
	return tensor.NoBound()
}

// Scalar returns a scalar bound converted to the input dtype when used.
// Integer inputs truncate toward zero and saturate at the type's range.
func Scalar(v float64) Bound {
	return tensor.Scalar(v)
}

// ScalarInt returns a scalar bound that is exact for int64 inputs.
func ScalarInt(v int64) Bound {
	return tensor.ScalarInt(v)
}

// TensorBound returns a bound taken element-wise from t.
// t must have the input dtype and a shape broadcastable with it.
func TensorBound(t *RawTensor) Bound {
	return tensor.TensorBound(t)
}
