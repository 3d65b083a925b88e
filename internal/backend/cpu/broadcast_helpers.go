package cpu

import (
	"github.com/born-ml/clip/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// operandKind says how an operand maps output indices to its own elements.
type operandKind int

const (
	operandScalar     operandKind = iota // one value for every output element
	operandContiguous                    // same shape as the output
	operandBroadcast                     // general broadcast through strides
)

// operand is one input of an element-wise kernel, resolved against the output
// shape once so the inner loop only does index arithmetic.
type operand[T tensor.DType] struct {
	kind    operandKind
	value   T
	data    []T
	strides []int
}

// at returns the operand element feeding output element i.
func (o *operand[T]) at(i int, outStrides []int) T {
	switch o.kind {
	case operandScalar:
		return o.value
	case operandContiguous:
		return o.data[i]
	default:
		return o.data[computeFlatIndex(i, outStrides, o.strides)]
	}
}

// tensorOperand resolves a tensor broadcast to outShape.
func tensorOperand[T tensor.DType](t *tensor.RawTensor, outShape tensor.Shape) operand[T] {
	data := tensor.Data[T](t)
	switch {
	case len(data) == 1:
		return operand[T]{kind: operandScalar, value: data[0]}
	case t.Shape().Equal(outShape):
		return operand[T]{kind: operandContiguous, data: data}
	default:
		return operand[T]{
			kind:    operandBroadcast,
			data:    data,
			strides: computeBroadcastStridesForShape(t.Shape(), outShape),
		}
	}
}

// boundOperand resolves a clip bound. An absent bound becomes the lowest value
// of T when lower is set and the highest otherwise.
func boundOperand[T tensor.DType](b tensor.Bound, outShape tensor.Shape, lower bool) operand[T] {
	switch b.Kind() {
	case tensor.BoundScalar:
		return operand[T]{kind: operandScalar, value: tensor.ScalarValue[T](b)}
	case tensor.BoundTensor:
		return tensorOperand[T](b.Tensor(), outShape)
	default:
		if lower {
			return operand[T]{kind: operandScalar, value: tensor.Lowest[T]()}
		}
		return operand[T]{kind: operandScalar, value: tensor.Highest[T]()}
	}
}
