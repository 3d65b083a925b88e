package tensor

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// FromFloat64 converts v to the element type T.
//
// Integers truncate toward zero and saturate at the type limits (NaN maps to 0).
// Float16 and BFloat16 round through float32.
func FromFloat64[T DType](v float64) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = float32(v)
	case *float64:
		*p = v
	case *int32:
		*p = saturate[int32](v)
	case *int64:
		*p = saturate[int64](v)
	case *int16:
		*p = saturate[int16](v)
	case *int8:
		*p = saturate[int8](v)
	case *uint8:
		*p = saturate[uint8](v)
	case *bool:
		*p = v != 0
	case *float16.Float16:
		*p = float16.Fromfloat32(float32(v))
	case *bfloat16.BFloat16:
		*p = bfloat16.FromFloat32(float32(v))
	default:
		panic("FromFloat64: unsupported type")
	}
	return out
}

// FromInt64 converts v to the element type T without passing through float64
// for the integer types, so large int64 bounds stay exact.
func FromInt64[T DType](v int64) T {
	var out T
	switch p := any(&out).(type) {
	case *int64:
		*p = v
	case *int32:
		*p = clampInt[int32](v)
	case *int16:
		*p = clampInt[int16](v)
	case *int8:
		*p = clampInt[int8](v)
	default:
		return FromFloat64[T](float64(v))
	}
	return out
}

// ToFloat64 widens an element of type T to float64.
func ToFloat64[T DType](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case int16:
		return float64(x)
	case int8:
		return float64(x)
	case uint8:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case float16.Float16:
		return float64(x.Float32())
	case bfloat16.BFloat16:
		return float64(x.Float32())
	default:
		panic("ToFloat64: unsupported type")
	}
}

// Lowest returns the smallest value of T: -Inf for floats, the minimum for integers.
func Lowest[T DType]() T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = math32.Inf(-1)
	case *float64:
		*p = math.Inf(-1)
	case *int32:
		*p = math.MinInt32
	case *int64:
		*p = math.MinInt64
	case *int16:
		*p = math.MinInt16
	case *int8:
		*p = math.MinInt8
	case *uint8:
		*p = 0
	case *bool:
		*p = false
	case *float16.Float16:
		*p = float16.Inf(-1)
	case *bfloat16.BFloat16:
		*p = bfloat16.FromFloat32(math32.Inf(-1))
	}
	return out
}

// Highest returns the largest value of T: +Inf for floats, the maximum for integers.
func Highest[T DType]() T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = math32.Inf(1)
	case *float64:
		*p = math.Inf(1)
	case *int32:
		*p = math.MaxInt32
	case *int64:
		*p = math.MaxInt64
	case *int16:
		*p = math.MaxInt16
	case *int8:
		*p = math.MaxInt8
	case *uint8:
		*p = math.MaxUint8
	case *bool:
		*p = true
	case *float16.Float16:
		*p = float16.Inf(1)
	case *bfloat16.BFloat16:
		*p = bfloat16.FromFloat32(math32.Inf(1))
	}
	return out
}

// Ordering returns the comparisons used by the clip kernels for T.
// Half-precision types compare through their exact float32 widening.
// Every comparison involving NaN is false.
func Ordering[T DType]() (less, lessEq func(a, b T) bool) {
	var fns [2]any
	var dummy T
	switch any(dummy).(type) {
	case float32:
		fns = [2]any{lt[float32], le[float32]}
	case float64:
		fns = [2]any{lt[float64], le[float64]}
	case int32:
		fns = [2]any{lt[int32], le[int32]}
	case int64:
		fns = [2]any{lt[int64], le[int64]}
	case int16:
		fns = [2]any{lt[int16], le[int16]}
	case int8:
		fns = [2]any{lt[int8], le[int8]}
	case uint8:
		fns = [2]any{lt[uint8], le[uint8]}
	case bool:
		fns = [2]any{
			func(a, b bool) bool { return !a && b },
			func(a, b bool) bool { return !a || b },
		}
	case float16.Float16:
		fns = [2]any{
			func(a, b float16.Float16) bool { return a.Float32() < b.Float32() },
			func(a, b float16.Float16) bool { return a.Float32() <= b.Float32() },
		}
	case bfloat16.BFloat16:
		fns = [2]any{
			func(a, b bfloat16.BFloat16) bool { return a.Float32() < b.Float32() },
			func(a, b bfloat16.BFloat16) bool { return a.Float32() <= b.Float32() },
		}
	default:
		panic("Ordering: unsupported type")
	}
	return fns[0].(func(a, b T) bool), fns[1].(func(a, b T) bool)
}

func lt[N constraints.Integer | constraints.Float](a, b N) bool {
	return a < b
}

func le[N constraints.Integer | constraints.Float](a, b N) bool {
	return a <= b
}

// saturate converts a float64 to the integer type I, truncating toward zero
// and clamping to the representable range.
func saturate[I constraints.Integer](v float64) I {
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := intRange[I]()
	if v <= lo {
		return I(lo)
	}
	if v >= hi {
		return maxOf[I]()
	}
	return I(v)
}

// clampInt narrows an int64 to the signed integer type I, clamping to its range.
func clampInt[I constraints.Signed](v int64) I {
	lo, hi := intRange[I]()
	if float64(v) <= lo {
		return I(lo)
	}
	if float64(v) >= hi {
		return maxOf[I]()
	}
	return I(v)
}

// intRange returns the range of I as float64 values; hi is the exact maximum
// for types narrower than 53 bits and 2^63 for int64.
func intRange[I constraints.Integer]() (lo, hi float64) {
	var zero I
	switch any(zero).(type) {
	case int8:
		return math.MinInt8, math.MaxInt8
	case int16:
		return math.MinInt16, math.MaxInt16
	case int32:
		return math.MinInt32, math.MaxInt32
	case int64:
		return math.MinInt64, math.MaxInt64
	case uint8:
		return 0, math.MaxUint8
	default:
		panic("intRange: unsupported integer type")
	}
}

func maxOf[I constraints.Integer]() I {
	var zero I
	var v int64
	switch any(zero).(type) {
	case int8:
		v = math.MaxInt8
	case int16:
		v = math.MaxInt16
	case int32:
		v = math.MaxInt32
	case int64:
		v = math.MaxInt64
	case uint8:
		v = math.MaxUint8
	default:
		panic("maxOf: unsupported integer type")
	}
	return I(v)
}
