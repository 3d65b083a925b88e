package cpu

import (
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/born-ml/clip/internal/parallel"
	"github.com/born-ml/clip/internal/tensor"
)

// Clip returns min(max(x, lo), hi) element-wise.
// The result has the broadcast shape of x, lo and hi. Absent bounds do not
// constrain that side. NaN inputs pass through unchanged.
func (cpu *CPUBackend) Clip(x *tensor.RawTensor, lo, hi tensor.Bound) (*tensor.RawTensor, error) {
	return cpu.clip("clip", x, lo, hi)
}

// ClipTensor is Clip with both bounds given as tensors of x's dtype.
func (cpu *CPUBackend) ClipTensor(x, lo, hi *tensor.RawTensor) (*tensor.RawTensor, error) {
	if lo == nil || hi == nil {
		return nil, tensor.Usagef("clip_tensor: both min and max tensors are required")
	}
	return cpu.clip("clip_tensor", x, tensor.TensorBound(lo), tensor.TensorBound(hi))
}

func (cpu *CPUBackend) clip(op string, x *tensor.RawTensor, lo, hi tensor.Bound) (*tensor.RawTensor, error) {
	outShape, err := tensor.ClipShape(op, x, lo, hi)
	if err != nil {
		return nil, err
	}
	if err := cpu.checkDevice(op, x, lo.Tensor(), hi.Tensor()); err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	klog.V(2).Infof("%s: x=%s%v min=%s max=%s out=%v", op, x.DType(), x.Shape(), lo, hi, outShape)
	if err := clipInto(result, x, lo, hi, outShape, cpu.cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return result, nil
}

// ClipInplace clips x into its own storage.
// The broadcast of x with its bounds must not change x's shape.
func (cpu *CPUBackend) ClipInplace(x *tensor.RawTensor, lo, hi tensor.Bound) error {
	const op = "clip_"
	outShape, err := tensor.ClipShape(op, x, lo, hi)
	if err != nil {
		return err
	}
	if !outShape.Equal(x.Shape()) {
		return tensor.ShapeMismatchf("%s: bounds would broadcast input %v to %v", op, x.Shape(), outShape)
	}
	if err := cpu.checkDevice(op, x, lo.Tensor(), hi.Tensor()); err != nil {
		return err
	}

	lo, hi = unalias(x, lo), unalias(x, hi)
	klog.V(2).Infof("%s: x=%s%v min=%s max=%s", op, x.DType(), x.Shape(), lo, hi)
	return errors.Wrap(clipInto(x, x, lo, hi, outShape, cpu.cfg), op)
}

// unalias copies a tensor bound that shares storage with x, so writing the
// clipped values cannot change bound elements that are still to be read.
func unalias(x *tensor.RawTensor, b tensor.Bound) tensor.Bound {
	if t := b.Tensor(); t != nil && t.SharesBuffer(x) {
		return tensor.TensorBound(t.Copy())
	}
	return b
}

// ClipGrad returns the gradient of Clip(x, lo, hi) with respect to x.
//
// Each element of grad passes through where lo <= x <= hi (both ends
// inclusive) and is zero elsewhere. When x was broadcast by its bounds the
// result is summed back to x's shape.
func (cpu *CPUBackend) ClipGrad(x *tensor.RawTensor, lo, hi tensor.Bound, grad *tensor.RawTensor) (*tensor.RawTensor, error) {
	const op = "clip_grad"
	outShape, err := tensor.ClipShape(op, x, lo, hi)
	if err != nil {
		return nil, err
	}
	if grad == nil {
		return nil, tensor.Usagef("%s: upstream gradient is nil", op)
	}
	if grad.DType() != x.DType() {
		return nil, tensor.TypeMismatchf("%s: gradient dtype %s does not match input dtype %s", op, grad.DType(), x.DType())
	}
	if !grad.Shape().Equal(outShape) {
		return nil, tensor.ShapeMismatchf("%s: gradient shape %v does not match output shape %v", op, grad.Shape(), outShape)
	}
	if err := cpu.checkDevice(op, x, lo.Tensor(), hi.Tensor(), grad); err != nil {
		return nil, err
	}

	full, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	klog.V(2).Infof("%s: x=%s%v min=%s max=%s", op, x.DType(), x.Shape(), lo, hi)
	if err := clipGradInto(full, grad, x, lo, hi, outShape, cpu.cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if outShape.Equal(x.Shape()) {
		return full, nil
	}
	return cpu.SumTo(full, x.Shape())
}

func clipInto(out, x *tensor.RawTensor, lo, hi tensor.Bound, outShape tensor.Shape, cfg parallel.Config) error {
	switch x.DType() {
	case tensor.Float32:
		clipKernel[float32](out, x, lo, hi, outShape, cfg)
	case tensor.Float64:
		clipKernel[float64](out, x, lo, hi, outShape, cfg)
	case tensor.Int32:
		clipKernel[int32](out, x, lo, hi, outShape, cfg)
	case tensor.Int64:
		clipKernel[int64](out, x, lo, hi, outShape, cfg)
	case tensor.Float16:
		clipKernel[float16.Float16](out, x, lo, hi, outShape, cfg)
	case tensor.BFloat16:
		clipKernel[bfloat16.BFloat16](out, x, lo, hi, outShape, cfg)
	default:
		return tensor.TypeMismatchf("unsupported dtype %s", x.DType())
	}
	return nil
}

func clipGradInto(out, grad, x *tensor.RawTensor, lo, hi tensor.Bound, outShape tensor.Shape, cfg parallel.Config) error {
	switch x.DType() {
	case tensor.Float32:
		clipGradKernel[float32](out, grad, x, lo, hi, outShape, cfg)
	case tensor.Float64:
		clipGradKernel[float64](out, grad, x, lo, hi, outShape, cfg)
	case tensor.Int32:
		clipGradKernel[int32](out, grad, x, lo, hi, outShape, cfg)
	case tensor.Int64:
		clipGradKernel[int64](out, grad, x, lo, hi, outShape, cfg)
	case tensor.Float16:
		clipGradKernel[float16.Float16](out, grad, x, lo, hi, outShape, cfg)
	case tensor.BFloat16:
		clipGradKernel[bfloat16.BFloat16](out, grad, x, lo, hi, outShape, cfg)
	default:
		return tensor.TypeMismatchf("unsupported dtype %s", x.DType())
	}
	return nil
}

// clipKernel writes the clipped elements of x into out, which has outShape.
// out may be x itself; each output element then only reads its own input element.
func clipKernel[T tensor.DType](out, x *tensor.RawTensor, lo, hi tensor.Bound, outShape tensor.Shape, cfg parallel.Config) {
	dst := tensor.Data[T](out)
	xs := tensorOperand[T](x, outShape)
	los := boundOperand[T](lo, outShape, true)
	his := boundOperand[T](hi, outShape, false)
	less, _ := tensor.Ordering[T]()

	if xs.kind == operandContiguous && los.kind == operandScalar && his.kind == operandScalar {
		src, l, h := xs.data, los.value, his.value
		parallel.ForChunks(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				v := src[i]
				if less(v, l) {
					v = l
				}
				if less(h, v) {
					v = h
				}
				dst[i] = v
			}
		}, cfg)
		return
	}

	outStrides := outShape.ComputeStrides()
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			v := xs.at(i, outStrides)
			if l := los.at(i, outStrides); less(v, l) {
				v = l
			}
			if h := his.at(i, outStrides); less(h, v) {
				v = h
			}
			dst[i] = v
		}
	}, cfg)
}

// clipGradKernel writes grad masked by lo <= x <= hi into out.
func clipGradKernel[T tensor.DType](out, grad, x *tensor.RawTensor, lo, hi tensor.Bound, outShape tensor.Shape, cfg parallel.Config) {
	dst := tensor.Data[T](out)
	g := tensor.Data[T](grad)
	xs := tensorOperand[T](x, outShape)
	los := boundOperand[T](lo, outShape, true)
	his := boundOperand[T](hi, outShape, false)
	_, lessEq := tensor.Ordering[T]()
	outStrides := outShape.ComputeStrides()

	var zero T
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			v := xs.at(i, outStrides)
			if lessEq(los.at(i, outStrides), v) && lessEq(v, his.at(i, outStrides)) {
				dst[i] = g[i]
			} else {
				dst[i] = zero
			}
		}
	}, cfg)
}
