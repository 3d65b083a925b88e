package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared buffer.
// Clones share it; in-place kernels write through it, so every clone observes
// the mutation.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation: a dense row-major buffer
// plus shape and runtime dtype.
type RawTensor struct {
	buffer *tensorBuffer // Shared reference-counted buffer
	shape  Shape         // Tensor dimensions
	stride []int         // Memory strides (row-major)
	dtype  DataType      // Runtime type information
	device Device        // Compute device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// FromData creates a RawTensor holding a copy of data.
func FromData[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, ShapeMismatchf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Data[T](raw), data)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data
}

// Data interprets the storage of r as []T.
// Panics if T does not match the tensor's dtype.
func Data[T DType](r *RawTensor) []T {
	if want := DataTypeOf[T](); r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
	data := r.buffer.data
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat32 interprets the data as []float32.
func (r *RawTensor) AsFloat32() []float32 { return Data[float32](r) }

// AsFloat64 interprets the data as []float64.
func (r *RawTensor) AsFloat64() []float64 { return Data[float64](r) }

// AsInt32 interprets the data as []int32.
func (r *RawTensor) AsInt32() []int32 { return Data[int32](r) }

// AsInt64 interprets the data as []int64.
func (r *RawTensor) AsInt64() []int64 { return Data[int64](r) }

// AsFloat16 interprets the data as []float16.Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 { return Data[float16.Float16](r) }

// AsBFloat16 interprets the data as []bfloat16.BFloat16.
func (r *RawTensor) AsBFloat16() []bfloat16.BFloat16 { return Data[bfloat16.BFloat16](r) }

// AsBool interprets the data as []bool.
func (r *RawTensor) AsBool() []bool { return Data[bool](r) }

// Clone creates a shallow copy of the RawTensor that shares its buffer.
// Writes through either handle (in-place clip) are visible through both.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Copy creates a deep copy with its own buffer.
func (r *RawTensor) Copy() *RawTensor {
	out := &RawTensor{
		buffer: newTensorBuffer(len(r.buffer.data)),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
	copy(out.buffer.data, r.buffer.data)
	return out
}

// Reshaped returns a view of r with a new shape of the same element count.
// The view shares r's buffer.
func (r *RawTensor) Reshaped(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, ShapeMismatchf("reshape: %v -> %v changes the number of elements", r.shape, shape)
	}
	view := r.Clone()
	view.shape = shape.Clone()
	view.stride = shape.ComputeStrides()
	return view, nil
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// SharesBuffer reports whether r and other alias the same storage.
func (r *RawTensor) SharesBuffer(other *RawTensor) bool {
	return r.buffer == other.buffer
}
