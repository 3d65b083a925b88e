package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: Pure Go, data-parallel kernels (internal/backend/cpu)
//   - Autodiff: decorator recording a gradient tape (internal/autodiff)
type Backend interface {
	// Clip bounds every element of x to [lo, hi] with broadcasting.
	// The result has shape broadcast(x, lo, hi) and x's dtype.
	Clip(x *RawTensor, lo, hi Bound) (*RawTensor, error)

	// ClipTensor is Clip with both bounds given as tensors.
	ClipTensor(x, lo, hi *RawTensor) (*RawTensor, error)

	// ClipInplace writes the clip of x into x's own storage.
	// Every tensor sharing x's buffer observes the new values.
	ClipInplace(x *RawTensor, lo, hi Bound) error

	// ClipGrad masks grad (of the clip output shape) to the elements where
	// lo <= x <= hi and returns a gradient of x's shape.
	ClipGrad(x *RawTensor, lo, hi Bound, grad *RawTensor) (*RawTensor, error)

	// Element-wise helpers used by the clip tests and by gradient accumulation.
	Add(a, b *RawTensor) (*RawTensor, error)
	MulScalar(x *RawTensor, scalar float64) (*RawTensor, error)
	Cast(x *RawTensor, dtype DataType) (*RawTensor, error)

	// SumTo reduces x by summation onto a shape it was broadcast from.
	SumTo(x *RawTensor, shape Shape) (*RawTensor, error)

	// Metadata
	Name() string
	Device() Device
}
