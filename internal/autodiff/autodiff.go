// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient tracking
// through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op (Clip, Add, Cast, Scale) implements backward pass
//   - Reverse-mode AD: Computes gradients using the chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
//	y, _ := x.Clip(tensor.Scalar(1.5), tensor.Scalar(2.5))
//
//	grads, _ := autodiff.Backward(y, backend)
//	fmt.Println(grads[x.Raw()].AsFloat32()) // [0 1 0]
package autodiff

import (
	"github.com/born-ml/clip/internal/autodiff/ops"
	"github.com/born-ml/clip/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Clip clips x and records the operation.
func (b *AutodiffBackend[B]) Clip(x *tensor.RawTensor, lo, hi tensor.Bound) (*tensor.RawTensor, error) {
	result, err := b.inner.Clip(x, lo, hi)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewClipOp(x, lo, hi, result))
	return result, nil
}

// ClipTensor clips x between tensor bounds and records the operation.
// The bounds receive no gradient.
func (b *AutodiffBackend[B]) ClipTensor(x, lo, hi *tensor.RawTensor) (*tensor.RawTensor, error) {
	result, err := b.inner.ClipTensor(x, lo, hi)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewClipOp(x, tensor.TensorBound(lo), tensor.TensorBound(hi), result))
	return result, nil
}

// ClipInplace clips x in place. It fails while the tape is recording, since
// a recorded op reading x would see the clipped values in backward.
func (b *AutodiffBackend[B]) ClipInplace(x *tensor.RawTensor, lo, hi tensor.Bound) error {
	if b.tape.IsRecording() {
		return tensor.Usagef("clip_: in-place clip is not differentiable; stop recording or use Clip")
	}
	return b.inner.ClipInplace(x, lo, hi)
}

// ClipGrad delegates to the wrapped backend. It is not recorded.
func (b *AutodiffBackend[B]) ClipGrad(x *tensor.RawTensor, lo, hi tensor.Bound, grad *tensor.RawTensor) (*tensor.RawTensor, error) {
	return b.inner.ClipGrad(x, lo, hi, grad)
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) (*tensor.RawTensor, error) {
	result, err := b.inner.Add(a, c)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewAddOp(a, c, result))
	return result, nil
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar float64) (*tensor.RawTensor, error) {
	result, err := b.inner.MulScalar(x, scalar)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewScaleOp(x, scalar, result))
	return result, nil
}

// Cast converts x to dtype and records the operation.
func (b *AutodiffBackend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) (*tensor.RawTensor, error) {
	result, err := b.inner.Cast(x, dtype)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewCastOp(x, result))
	return result, nil
}

// SumTo delegates to the wrapped backend. It is not recorded.
func (b *AutodiffBackend[B]) SumTo(x *tensor.RawTensor, shape tensor.Shape) (*tensor.RawTensor, error) {
	return b.inner.SumTo(x, shape)
}
