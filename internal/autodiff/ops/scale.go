package ops

import "github.com/born-ml/clip/internal/tensor"

// ScaleOp represents output = x * scalar.
//
// Backward pass: grad_x = outputGrad * scalar.
type ScaleOp struct {
	input  *tensor.RawTensor
	scalar float64
	output *tensor.RawTensor
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(x *tensor.RawTensor, scalar float64, output *tensor.RawTensor) *ScaleOp {
	return &ScaleOp{input: x, scalar: scalar, output: output}
}

// Backward scales the output gradient.
func (op *ScaleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	grad, err := backend.MulScalar(outputGrad, op.scalar)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}

// Inputs returns [x].
func (op *ScaleOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns x * scalar.
func (op *ScaleOp) Output() *tensor.RawTensor {
	return op.output
}
