package autodiff

import (
	"github.com/born-ml/clip/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t, seeded with ones of t's shape, using the
// backend's tape.
//
// Returns a map from RawTensor to its gradient.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
//	y, _ := x.Clip(tensor.Scalar(1), tensor.Scalar(3))
//	gradients, err := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // [1 1 1]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		return nil, tensor.Usagef("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad := tensor.Ones[T](t.Shape(), backend)
	return tape.Backward(t.Raw(), outputGrad.Raw(), backend)
}
