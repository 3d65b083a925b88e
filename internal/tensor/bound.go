package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// BoundKind tells which alternative of a Bound is set.
type BoundKind int

// Bound alternatives.
const (
	BoundNone BoundKind = iota
	BoundScalar
	BoundTensor
)

// Bound is one side of a clip range: absent, a scalar attribute, or a tensor
// broadcastable to the input.
//
// The zero value is an absent bound, which resolves to the lowest (for min)
// or highest (for max) value of the element type.
type Bound struct {
	kind    BoundKind
	scalar  float64
	integer int64
	isInt   bool
	tensor  *RawTensor
}

// NoBound returns an absent bound.
func NoBound() Bound {
	return Bound{}
}

// Scalar returns a scalar bound. It is converted to the input's element type
// when the clip runs: integers truncate toward zero and saturate.
func Scalar(v float64) Bound {
	return Bound{kind: BoundScalar, scalar: v}
}

// ScalarInt returns an integer scalar bound, exact for every int64 value.
func ScalarInt(v int64) Bound {
	return Bound{kind: BoundScalar, integer: v, isInt: true, scalar: float64(v)}
}

// TensorBound returns a bound backed by t. A nil t is an absent bound.
func TensorBound(t *RawTensor) Bound {
	if t == nil {
		return Bound{}
	}
	return Bound{kind: BoundTensor, tensor: t}
}

// Kind returns the alternative that is set.
func (b Bound) Kind() BoundKind {
	return b.kind
}

// IsNone reports whether the bound is absent.
func (b Bound) IsNone() bool {
	return b.kind == BoundNone
}

// Tensor returns the bound tensor, or nil if the bound is not a tensor.
func (b Bound) Tensor() *RawTensor {
	return b.tensor
}

// Shape returns the shape the bound takes part in broadcasting with.
// Absent and scalar bounds are 0-D.
func (b Bound) Shape() Shape {
	if b.kind == BoundTensor {
		return b.tensor.Shape()
	}
	return Shape{}
}

// ScalarValue returns the scalar converted to T.
func ScalarValue[T DType](b Bound) T {
	if b.isInt {
		return FromInt64[T](b.integer)
	}
	return FromFloat64[T](b.scalar)
}

// Float64 returns the scalar as float64 (0 for non-scalar bounds).
func (b Bound) Float64() float64 {
	return b.scalar
}

// String returns a short description of the bound.
func (b Bound) String() string {
	switch b.kind {
	case BoundScalar:
		if b.isInt {
			return fmt.Sprintf("scalar(%d)", b.integer)
		}
		return fmt.Sprintf("scalar(%g)", b.scalar)
	case BoundTensor:
		return fmt.Sprintf("tensor(%s%v)", b.tensor.DType(), b.tensor.Shape())
	default:
		return "none"
	}
}

// CheckBound validates a bound against the input dtype: tensor bounds must
// share x's element type.
func CheckBound(op, side string, x *RawTensor, b Bound) error {
	if b.kind != BoundTensor {
		return nil
	}
	if b.tensor.DType() != x.DType() {
		return TypeMismatchf("%s: %s bound dtype %s does not match input dtype %s",
			op, side, b.tensor.DType(), x.DType())
	}
	return nil
}

// ClipShape validates x and its bounds and returns the output shape of a clip:
// the broadcast of x, lo and hi.
func ClipShape(op string, x *RawTensor, lo, hi Bound) (Shape, error) {
	if x == nil {
		return nil, Usagef("%s: input tensor is nil", op)
	}
	if !x.DType().Clippable() {
		return nil, TypeMismatchf("%s: dtype %s is not supported (want float16, bfloat16, float32, float64, int32 or int64)",
			op, x.DType())
	}
	if err := CheckBound(op, "min", x, lo); err != nil {
		return nil, err
	}
	if err := CheckBound(op, "max", x, hi); err != nil {
		return nil, err
	}
	outShape, _, err := BroadcastAll(x.Shape(), lo.Shape(), hi.Shape())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return outShape, nil
}
