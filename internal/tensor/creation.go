package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, FromFloat64[T](1), b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 0.3, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Rand creates a tensor with values uniformly drawn from [0, 1), converted to T.
// Uses the given source so that tests and the CLI are reproducible.
//
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = FromFloat64[T](rng.Float64())
	}
	return t
}

// Randn creates a tensor with values from a normal distribution (mean=0, std=1),
// converted to T.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = FromFloat64[T](rng.NormFloat64())
	}
	return t
}

// Arange creates a 1-D tensor with values [start, start+1, ..., end-1].
func Arange[T DType, B Backend](start, end int, b B) *Tensor[T, B] {
	if end <= start {
		panic("Arange: end must be greater than start")
	}
	t := Zeros[T, B](Shape{end - start}, b)
	data := t.Data()
	for i := range data {
		data[i] = FromInt64[T](int64(start + i))
	}
	return t
}
