package cpu

import (
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/clip/internal/tensor"
)

// Cast converts the tensor to a different data type.
//
// Values go through float64: floats truncate toward zero when cast to an
// integer type and saturate at its limits, NaN becomes 0. Casting to the same
// dtype returns a copy.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if x.DType() == dtype {
		return x.Copy(), nil
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, "cast")
	}

	vals, err := widen(x)
	if err != nil {
		return nil, err
	}
	if err := narrow(result, vals); err != nil {
		return nil, err
	}
	return result, nil
}

func widen(x *tensor.RawTensor) ([]float64, error) {
	switch x.DType() {
	case tensor.Float32:
		return toFloat64s[float32](x), nil
	case tensor.Float64:
		return toFloat64s[float64](x), nil
	case tensor.Int32:
		return toFloat64s[int32](x), nil
	case tensor.Int64:
		return toFloat64s[int64](x), nil
	case tensor.Int16:
		return toFloat64s[int16](x), nil
	case tensor.Int8:
		return toFloat64s[int8](x), nil
	case tensor.Uint8:
		return toFloat64s[uint8](x), nil
	case tensor.Bool:
		return toFloat64s[bool](x), nil
	case tensor.Float16:
		return toFloat64s[float16.Float16](x), nil
	case tensor.BFloat16:
		return toFloat64s[bfloat16.BFloat16](x), nil
	default:
		return nil, tensor.TypeMismatchf("cast: unsupported source dtype %s", x.DType())
	}
}

func narrow(out *tensor.RawTensor, vals []float64) error {
	switch out.DType() {
	case tensor.Float32:
		fromFloat64s[float32](out, vals)
	case tensor.Float64:
		fromFloat64s[float64](out, vals)
	case tensor.Int32:
		fromFloat64s[int32](out, vals)
	case tensor.Int64:
		fromFloat64s[int64](out, vals)
	case tensor.Int16:
		fromFloat64s[int16](out, vals)
	case tensor.Int8:
		fromFloat64s[int8](out, vals)
	case tensor.Uint8:
		fromFloat64s[uint8](out, vals)
	case tensor.Bool:
		fromFloat64s[bool](out, vals)
	case tensor.Float16:
		fromFloat64s[float16.Float16](out, vals)
	case tensor.BFloat16:
		fromFloat64s[bfloat16.BFloat16](out, vals)
	default:
		return tensor.TypeMismatchf("cast: unsupported target dtype %s", out.DType())
	}
	return nil
}

func toFloat64s[T tensor.DType](x *tensor.RawTensor) []float64 {
	src := tensor.Data[T](x)
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = tensor.ToFloat64(v)
	}
	return out
}

func fromFloat64s[T tensor.DType](out *tensor.RawTensor, vals []float64) {
	dst := tensor.Data[T](out)
	for i, v := range vals {
		dst[i] = tensor.FromFloat64[T](v)
	}
}
