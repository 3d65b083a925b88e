package static

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/born-ml/clip/internal/tensor"
)

// Clip adds clip(x, lo, hi) to x's program.
//
// x must be a *Var. Each bound is nil (absent), a Go number (an attribute
// converted to x's dtype) or a *Var of the same program and dtype as x.
// Anything else, such as a Go slice or an eager tensor, is ErrUsage.
func Clip(x any, lo, hi any) (*Var, error) {
	const op = "clip"
	xv, err := asVar(op, x)
	if err != nil {
		return nil, err
	}
	loB, err := toBound(op, "min", xv, lo)
	if err != nil {
		return nil, err
	}
	hiB, err := toBound(op, "max", xv, hi)
	if err != nil {
		return nil, err
	}
	return addClip(op, opClip, xv, loB, hiB)
}

// MustClip is Clip that panics on error.
func MustClip(x any, lo, hi any) *Var {
	return mustVar(Clip(x, lo, hi))
}

// ClipTensor adds clip_tensor(x, lo, hi): both bounds are required variables.
func ClipTensor(x, lo, hi *Var) (*Var, error) {
	const op = "clip_tensor"
	if x == nil || lo == nil || hi == nil {
		return nil, tensor.Usagef("%s: x, min and max variables are all required", op)
	}
	loB, err := toBound(op, "min", x, lo)
	if err != nil {
		return nil, err
	}
	hiB, err := toBound(op, "max", x, hi)
	if err != nil {
		return nil, err
	}
	return addClip(op, opClipTensor, x, loB, hiB)
}

// MustClipTensor is ClipTensor that panics on error.
func MustClipTensor(x, lo, hi *Var) *Var {
	return mustVar(ClipTensor(x, lo, hi))
}

// ClipInplace adds clip_(x, lo, hi): x's value is clipped in its own storage
// and the result aliases it, so later uses of x in the program see the
// clipped values. Bounds follow Clip, but must not broadcast x to a larger
// shape (ErrShapeMismatch). Fed tensors are copied before they are written.
func ClipInplace(x any, lo, hi any) (*Var, error) {
	const op = "clip_"
	xv, err := asVar(op, x)
	if err != nil {
		return nil, err
	}
	loB, err := toBound(op, "min", xv, lo)
	if err != nil {
		return nil, err
	}
	hiB, err := toBound(op, "max", xv, hi)
	if err != nil {
		return nil, err
	}
	return addClip(op, opClipInplace, xv, loB, hiB)
}

// MustClipInplace is ClipInplace that panics on error.
func MustClipInplace(x any, lo, hi any) *Var {
	return mustVar(ClipInplace(x, lo, hi))
}

// Cast adds a dtype conversion of x.
func Cast(x *Var, dtype tensor.DataType) (*Var, error) {
	if x == nil {
		return nil, tensor.Usagef("cast: x is nil")
	}
	if !dtype.Valid() {
		return nil, tensor.TypeMismatchf("cast: unknown target dtype %s", dtype)
	}
	return x.program.add(&Var{
		kind:   opCast,
		shape:  x.shape.Clone(),
		dtype:  dtype,
		inputs: []*Var{x},
	}), nil
}

// MustCast is Cast that panics on error.
func MustCast(x *Var, dtype tensor.DataType) *Var {
	return mustVar(Cast(x, dtype))
}

// Scale adds x * s.
func Scale(x *Var, s float64) (*Var, error) {
	if x == nil {
		return nil, tensor.Usagef("scale: x is nil")
	}
	if !x.dtype.Clippable() {
		return nil, tensor.TypeMismatchf("scale: dtype %s is not supported", x.dtype)
	}
	return x.program.add(&Var{
		kind:   opScale,
		shape:  x.shape.Clone(),
		dtype:  x.dtype,
		inputs: []*Var{x},
		scalar: s,
	}), nil
}

// MustScale is Scale that panics on error.
func MustScale(x *Var, s float64) *Var {
	return mustVar(Scale(x, s))
}

// Build creates a program and runs fn to populate it. Errors raised by the
// Must* constructors inside fn are returned instead of panicking.
//
// Example:
//
//	var y *static.Var
//	p, err := static.Build("clip", func(p *static.Program) {
//		x := p.MustData("x", tensor.Shape{4, 5}, tensor.Float32)
//		y = static.MustClip(x, 0.2, 0.8)
//	})
func Build(name string, fn func(p *Program)) (*Program, error) {
	p := NewProgram(name)
	if err := exceptions.TryCatch[error](func() { fn(p) }); err != nil {
		return nil, errors.WithMessagef(err, "building program %q", name)
	}
	return p, nil
}

// mustVar panics with err unchanged, so Build returns it with errors.Is intact.
func mustVar(v *Var, err error) *Var {
	if err != nil {
		panic(err)
	}
	return v
}

func asVar(op string, x any) (*Var, error) {
	v, ok := x.(*Var)
	if !ok {
		return nil, tensor.Usagef("%s: x must be a program variable (*static.Var), got %T", op, x)
	}
	if v == nil {
		return nil, tensor.Usagef("%s: x is nil", op)
	}
	return v, nil
}

// toBound converts a construction-time bound argument.
func toBound(op, side string, x *Var, b any) (bound, error) {
	switch v := b.(type) {
	case nil:
		return bound{}, nil
	case *Var:
		if v == nil {
			return bound{}, nil
		}
		if v.program != x.program {
			return bound{}, tensor.Usagef("%s: %s bound %s belongs to program %q, x to %q",
				op, side, v.Name(), v.program.name, x.program.name)
		}
		if v.dtype != x.dtype {
			return bound{}, tensor.TypeMismatchf("%s: %s bound dtype %s does not match input dtype %s",
				op, side, v.dtype, x.dtype)
		}
		return bound{value: tensor.NoBound(), v: v}, nil
	case float64:
		return bound{value: tensor.Scalar(v)}, nil
	case float32:
		return bound{value: tensor.Scalar(float64(v))}, nil
	case int:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case int64:
		return bound{value: tensor.ScalarInt(v)}, nil
	case int32:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case int16:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case int8:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case uint8:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case uint16:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case uint32:
		return bound{value: tensor.ScalarInt(int64(v))}, nil
	case uint:
		return unsignedBound(uint64(v)), nil
	case uint64:
		return unsignedBound(v), nil
	default:
		return bound{}, tensor.Usagef("%s: %s bound must be nil, a number or a *static.Var, got %T", op, side, b)
	}
}

// unsignedBound keeps values above MaxInt64 as float scalars, which saturate.
func unsignedBound(v uint64) bound {
	if v > math.MaxInt64 {
		return bound{value: tensor.Scalar(float64(v))}
	}
	return bound{value: tensor.ScalarInt(int64(v))}
}

func addClip(op string, kind opKind, x *Var, lo, hi bound) (*Var, error) {
	if !x.dtype.Clippable() {
		return nil, tensor.TypeMismatchf("%s: dtype %s is not supported (want float16, bfloat16, float32, float64, int32 or int64)",
			op, x.dtype)
	}
	shape, err := broadcastStatic(x.shape, lo.shape(), hi.shape())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if kind == opClipInplace && !keepsShape(x.shape, shape) {
		return nil, tensor.ShapeMismatchf("%s: bounds would broadcast input %v to %v", op, x.shape, shape)
	}

	inputs := []*Var{x}
	for _, b := range []bound{lo, hi} {
		if b.v != nil {
			inputs = append(inputs, b.v)
		}
	}
	return x.program.add(&Var{
		kind:   kind,
		shape:  shape,
		dtype:  x.dtype,
		inputs: inputs,
		lo:     lo,
		hi:     hi,
	}), nil
}

func (b bound) shape() tensor.Shape {
	if b.v != nil {
		return b.v.shape
	}
	return tensor.Shape{}
}

// keepsShape reports whether out, the broadcast of in with its bounds, can
// equal in at run time. Unknown input dimensions are checked by the backend.
func keepsShape(in, out tensor.Shape) bool {
	if len(in) != len(out) {
		return false
	}
	for i, d := range in {
		if d != -1 && d != out[i] {
			return false
		}
	}
	return true
}

// broadcastStatic broadcasts shapes that may contain -1 (unknown) dimensions.
// An unknown dimension broadcast against 1 or another unknown stays unknown;
// against a known size it takes that size and is checked when the program runs.
func broadcastStatic(shapes ...tensor.Shape) (tensor.Shape, error) {
	rank := 0
	for _, s := range shapes {
		rank = max(rank, len(s))
	}
	out := make(tensor.Shape, rank)
	for i := range out {
		out[i] = 1
	}
	for _, s := range shapes {
		offset := rank - len(s)
		for i, d := range s {
			cur := out[offset+i]
			switch {
			case d == 1 || d == cur:
			case cur == 1:
				out[offset+i] = d
			case d == -1:
			case cur == -1:
				out[offset+i] = d
			default:
				return nil, tensor.ShapeMismatchf("shapes %v are not broadcastable (dim %d: %d vs %d)",
					shapes, offset+i, cur, d)
			}
		}
	}
	return out, nil
}
