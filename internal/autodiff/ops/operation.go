// Package ops defines the differentiable operations recorded by the gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - ClipOp: clip and clip_tensor (gradient masked by lo <= x <= hi)
//   - AddOp: element-wise addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - ScaleOp: multiplication by a constant (d(s*x)/dx = s)
//   - CastOp: dtype conversion (gradient cast back to the input dtype)
package ops

import "github.com/born-ml/clip/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error)

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
