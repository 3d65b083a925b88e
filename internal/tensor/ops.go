package tensor

// Clip bounds every element to [lo, hi] with NumPy-style broadcasting.
//
// Either bound may be NoBound(). Scalar bounds are converted to T.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{0.1, 0.5, 0.9}, Shape{3}, backend)
//	y, err := x.Clip(tensor.Scalar(0.2), tensor.Scalar(0.8)) // [0.2, 0.5, 0.8]
func (t *Tensor[T, B]) Clip(lo, hi Bound) (*Tensor[T, B], error) {
	result, err := t.backend.Clip(t.raw, lo, hi)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// ClipTensor bounds every element between the matching elements of lo and hi.
// Both bounds are required and broadcast against t.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{4, 5}, backend)
//	lo := tensor.Full[float32](Shape{5}, 0.3, backend)
//	hi := tensor.Full[float32](Shape{4, 5}, 0.8, backend)
//	y, err := x.ClipTensor(lo, hi) // Shape: [4, 5]
func (t *Tensor[T, B]) ClipTensor(lo, hi *Tensor[T, B]) (*Tensor[T, B], error) {
	if lo == nil || hi == nil {
		return nil, Usagef("clip_tensor: both min and max tensors are required")
	}
	result, err := t.backend.ClipTensor(t.raw, lo.raw, hi.raw)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// ClipInplace clips t into its own storage and returns t.
//
// Any tensor sharing t's storage (see Clone) observes the clipped values.
func (t *Tensor[T, B]) ClipInplace(lo, hi Bound) (*Tensor[T, B], error) {
	if err := t.backend.ClipInplace(t.raw, lo, hi); err != nil {
		return nil, err
	}
	return t, nil
}

// ClipGrad returns the gradient of Clip(lo, hi) with respect to t given the
// upstream gradient grad.
func (t *Tensor[T, B]) ClipGrad(lo, hi Bound, grad *Tensor[T, B]) (*Tensor[T, B], error) {
	if grad == nil {
		return nil, Usagef("clip_grad: upstream gradient is nil")
	}
	result, err := t.backend.ClipGrad(t.raw, lo, hi, grad.raw)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// MulScalar multiplies every element by scalar.
func (t *Tensor[T, B]) MulScalar(scalar float64) (*Tensor[T, B], error) {
	result, err := t.backend.MulScalar(t.raw, scalar)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) (*Tensor[T, B], error) {
	result, err := t.backend.Add(t.raw, other.raw)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Cast converts t to element type U.
//
// Example:
//
//	scaled, _ := images.MulScalar(10)
//	ints, err := tensor.Cast[int32](scaled)
func Cast[U, T DType, B Backend](t *Tensor[T, B]) (*Tensor[U, B], error) {
	result, err := t.backend.Cast(t.raw, DataTypeOf[U]())
	if err != nil {
		return nil, err
	}
	return New[U, B](result, t.backend), nil
}
