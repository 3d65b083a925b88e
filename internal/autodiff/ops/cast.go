package ops

import "github.com/born-ml/clip/internal/tensor"

// CastOp represents a dtype conversion.
//
// Backward pass: grad_x = cast(outputGrad, x.dtype). The gradient passes
// straight through casts to integer dtypes as well.
type CastOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewCastOp creates a new CastOp.
func NewCastOp(x, output *tensor.RawTensor) *CastOp {
	return &CastOp{input: x, output: output}
}

// Backward casts the output gradient back to the input dtype.
func (op *CastOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	grad, err := backend.Cast(outputGrad, op.input.DType())
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}

// Inputs returns [x].
func (op *CastOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the converted tensor.
func (op *CastOp) Output() *tensor.RawTensor {
	return op.output
}
