package ops

import "github.com/born-ml/clip/internal/tensor"

// ClipOp represents output = clip(x, lo, hi), for both scalar and tensor bounds.
//
// Backward pass:
//   - grad_x = outputGrad where lo <= x <= hi, else 0
//   - the bounds are constants and receive no gradient
type ClipOp struct {
	input  *tensor.RawTensor
	lo, hi tensor.Bound
	output *tensor.RawTensor
}

// NewClipOp creates a new ClipOp.
func NewClipOp(x *tensor.RawTensor, lo, hi tensor.Bound, output *tensor.RawTensor) *ClipOp {
	return &ClipOp{input: x, lo: lo, hi: hi, output: output}
}

// Backward masks the output gradient by the clip range.
func (op *ClipOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	grad, err := backend.ClipGrad(op.input, op.lo, op.hi, outputGrad)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}

// Inputs returns [x].
func (op *ClipOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the clipped tensor.
func (op *ClipOp) Output() *tensor.RawTensor {
	return op.output
}
