package ops

import (
	"github.com/born-ml/clip/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) (*tensor.RawTensor, error) {
	// Same shape: copy so accumulation never writes into a shared gradient.
	if grad.Shape().Equal(targetShape) {
		return grad.Copy(), nil
	}
	return backend.SumTo(grad, targetShape)
}
