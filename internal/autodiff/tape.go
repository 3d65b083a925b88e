package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/clip/internal/autodiff/ops"
	"github.com/born-ml/clip/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	gradients, err := tape.Backward(output, outputGrad, backend)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 16),
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients of output for every tensor that contributed to
// it, walking the tape in reverse.
//
// Algorithm:
//  1. Seed output with outputGrad
//  2. Walk operations in reverse order
//  3. For each operation whose output has a gradient, compute input gradients
//  4. Accumulate gradients when the same tensor is used multiple times
//
// Returns a map from RawTensor to its accumulated gradient.
func (t *GradientTape) Backward(output, outputGrad *tensor.RawTensor, backend tensor.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if !outputGrad.Shape().Equal(output.Shape()) {
		return nil, tensor.ShapeMismatchf("backward: output gradient shape %v does not match output %v",
			outputGrad.Shape(), output.Shape())
	}

	// Stop recording during backward pass to prevent recording gradient operations
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: outputGrad}

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		opGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads, err := op.Backward(opGrad, backend)
		if err != nil {
			return nil, errors.Wrapf(err, "backward: op %d (%T)", i, op)
		}
		if err := accumulateGrads(op.Inputs(), inputGrads, grads, backend); err != nil {
			return nil, err
		}
	}

	return grads, nil
}

// accumulateGrads accumulates gradients for each input tensor.
func accumulateGrads(
	inputs, inputGrads []*tensor.RawTensor,
	grads map[*tensor.RawTensor]*tensor.RawTensor,
	backend tensor.Backend,
) error {
	for j, input := range inputs {
		if j >= len(inputGrads) {
			break
		}
		inputGrad := inputGrads[j]
		if inputGrad == nil {
			continue
		}
		existing, ok := grads[input]
		if !ok {
			grads[input] = inputGrad
			continue
		}
		sum, err := backend.Add(existing, inputGrad)
		if err != nil {
			return errors.Wrap(err, "backward: accumulate")
		}
		grads[input] = sum
	}
	return nil
}
