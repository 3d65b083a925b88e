package cpu

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/clip/internal/parallel"
	"github.com/born-ml/clip/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.DType() != b.DType() {
		return nil, tensor.TypeMismatchf("add: dtype %s does not match %s", a.DType(), b.DType())
	}
	if err := cpu.checkDevice("add", a, b); err != nil {
		return nil, err
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.Wrap(err, "add")
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, "add")
	}

	switch a.DType() {
	case tensor.Float32:
		addKernel[float32](result, a, b, outShape, cpu.cfg)
	case tensor.Float64:
		addKernel[float64](result, a, b, outShape, cpu.cfg)
	case tensor.Int32:
		addKernel[int32](result, a, b, outShape, cpu.cfg)
	case tensor.Int64:
		addKernel[int64](result, a, b, outShape, cpu.cfg)
	case tensor.Float16:
		addKernel[float16.Float16](result, a, b, outShape, cpu.cfg)
	case tensor.BFloat16:
		addKernel[bfloat16.BFloat16](result, a, b, outShape, cpu.cfg)
	default:
		return nil, tensor.TypeMismatchf("add: unsupported dtype %s", a.DType())
	}
	return result, nil
}

// SumTo sums x over its broadcast dimensions so the result has shape.
// shape must broadcast to x's shape.
func (cpu *CPUBackend) SumTo(x *tensor.RawTensor, shape tensor.Shape) (*tensor.RawTensor, error) {
	if back, _, err := tensor.BroadcastShapes(shape, x.Shape()); err != nil || !back.Equal(x.Shape()) {
		return nil, tensor.ShapeMismatchf("sum_to: %v does not broadcast to %v", shape, x.Shape())
	}
	if shape.Equal(x.Shape()) {
		return x.Copy(), nil
	}

	result, err := tensor.NewRaw(shape, x.DType(), cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, "sum_to")
	}

	switch x.DType() {
	case tensor.Float32:
		sumToKernel[float32](result, x)
	case tensor.Float64:
		sumToKernel[float64](result, x)
	case tensor.Int32:
		sumToKernel[int32](result, x)
	case tensor.Int64:
		sumToKernel[int64](result, x)
	case tensor.Float16:
		sumToKernel[float16.Float16](result, x)
	case tensor.BFloat16:
		sumToKernel[bfloat16.BFloat16](result, x)
	default:
		return nil, tensor.TypeMismatchf("sum_to: unsupported dtype %s", x.DType())
	}
	return result, nil
}

// MulScalar multiplies each element of the tensor by a scalar value.
//
// float32 multiplies by float32(scalar). Integers multiply natively by a
// whole scalar and saturate on overflow. Otherwise the product is taken in
// float64 and converted back, so integers truncate and saturate.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) (*tensor.RawTensor, error) {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, "mul_scalar")
	}

	switch x.DType() {
	case tensor.Float32:
		s := float32(scalar)
		mapKernel(tensor.Data[float32](result), x.AsFloat32(), func(v float32) float32 { return v * s }, cpu.cfg)
	case tensor.Float64:
		mapKernel(tensor.Data[float64](result), x.AsFloat64(), func(v float64) float64 { return v * scalar }, cpu.cfg)
	case tensor.Int32:
		scaleIntKernel[int32](result, x, scalar, cpu.cfg)
	case tensor.Int64:
		scaleIntKernel[int64](result, x, scalar, cpu.cfg)
	case tensor.Float16:
		scaleKernel[float16.Float16](result, x, scalar, cpu.cfg)
	case tensor.BFloat16:
		scaleKernel[bfloat16.BFloat16](result, x, scalar, cpu.cfg)
	default:
		return nil, tensor.TypeMismatchf("mul_scalar: unsupported dtype %s", x.DType())
	}
	return result, nil
}

func addKernel[T tensor.DType](out, a, b *tensor.RawTensor, outShape tensor.Shape, cfg parallel.Config) {
	dst := tensor.Data[T](out)
	as := tensorOperand[T](a, outShape)
	bs := tensorOperand[T](b, outShape)
	add := plus[T]()
	outStrides := outShape.ComputeStrides()

	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = add(as.at(i, outStrides), bs.at(i, outStrides))
		}
	}, cfg)
}

// sumToKernel accumulates every element of x into the element of out it was
// broadcast from.
func sumToKernel[T tensor.DType](out, x *tensor.RawTensor) {
	dst := tensor.Data[T](out)
	src := tensor.Data[T](x)
	add := plus[T]()
	srcStrides := x.Shape().ComputeStrides()
	dstStrides := computeBroadcastStridesForShape(out.Shape(), x.Shape())

	for i, v := range src {
		j := computeFlatIndex(i, srcStrides, dstStrides)
		dst[j] = add(dst[j], v)
	}
}

func scaleKernel[T tensor.DType](out, x *tensor.RawTensor, scalar float64, cfg parallel.Config) {
	mapKernel(tensor.Data[T](out), tensor.Data[T](x), func(v T) T {
		return tensor.FromFloat64[T](tensor.ToFloat64(v) * scalar)
	}, cfg)
}

func scaleIntKernel[I int32 | int64](out, x *tensor.RawTensor, scalar float64, cfg parallel.Config) {
	if scalar != math.Trunc(scalar) || math.Abs(scalar) >= 1<<63 {
		scaleKernel[I](out, x, scalar, cfg)
		return
	}
	n := int64(scalar)
	mapKernel(tensor.Data[I](out), tensor.Data[I](x), func(v I) I {
		return tensor.FromInt64[I](mulSaturated(int64(v), n))
	}, cfg)
}

// mulSaturated returns a*b clamped to the int64 range.
func mulSaturated(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		if (a < 0) != (b < 0) {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return p
}

func mapKernel[T any](dst, src []T, f func(T) T, cfg parallel.Config) {
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, cfg)
}

// plus returns addition for T. Half-precision types add in float32 and round once.
func plus[T tensor.DType]() func(a, b T) T {
	var fn any
	var dummy T
	switch any(dummy).(type) {
	case float32:
		fn = sum[float32]
	case float64:
		fn = sum[float64]
	case int32:
		fn = sum[int32]
	case int64:
		fn = sum[int64]
	case int16:
		fn = sum[int16]
	case int8:
		fn = sum[int8]
	case uint8:
		fn = sum[uint8]
	case bool:
		fn = func(a, b bool) bool { return a || b }
	case float16.Float16:
		fn = func(a, b float16.Float16) float16.Float16 {
			return float16.Fromfloat32(a.Float32() + b.Float32())
		}
	case bfloat16.BFloat16:
		fn = func(a, b bfloat16.BFloat16) bfloat16.BFloat16 {
			return bfloat16.FromFloat32(a.Float32() + b.Float32())
		}
	}
	return fn.(func(a, b T) T)
}

func sum[N constraints.Integer | constraints.Float](a, b N) N {
	return a + b
}
