// Package tensor provides the core tensor types and operations for the clip operators.
package tensor

import (
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DType is a constraint for supported tensor data types.
// It uses Go generics to ensure compile-time type safety.
//
// Float16 and BFloat16 share the uint16 underlying type, so they are listed as
// exact types rather than with ~.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~int8 | ~int16 | ~uint8 | ~bool |
		float16.Float16 | bfloat16.BFloat16
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
	Float16
	BFloat16
	Int8
	Int16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, BFloat16, Int16:
		return 2
	case Uint8, Bool, Int8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the declared data types.
func (dt DataType) Valid() bool {
	return dt >= Float32 && dt <= Int16
}

// IsFloat returns true for the floating-point data types.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float16, BFloat16, Float32, Float64:
		return true
	default:
		return false
	}
}

// Clippable reports whether the clip kernels are registered for dt.
// Narrow integers, uint8 and bool are storage-only types.
func (dt DataType) Clippable() bool {
	switch dt {
	case Float16, BFloat16, Float32, Float64, Int32, Int64:
		return true
	default:
		return false
	}
}

// ParseDataType maps a dtype name ("float32", "int64", ...) to its DataType.
func ParseDataType(name string) (DataType, bool) {
	for dt := Float32; dt.Valid(); dt++ {
		if dt.String() == name {
			return dt, true
		}
	}
	return 0, false
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	case int8:
		return Int8
	case int16:
		return Int16
	default:
		panic("unsupported type")
	}
}

// DataTypeOf returns the runtime DataType of the Go type T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	return inferDataType(dummy)
}
