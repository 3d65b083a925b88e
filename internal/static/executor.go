package static

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/clip/internal/tensor"
)

// Executor runs programs on a backend.
type Executor struct {
	backend tensor.Backend
}

// NewExecutor returns an executor that runs programs on backend.
func NewExecutor(backend tensor.Backend) *Executor {
	klog.V(1).Infof("static executor on backend %s", backend.Name())
	return &Executor{backend: backend}
}

// Backend returns the backend programs run on.
func (e *Executor) Backend() tensor.Backend {
	return e.backend
}

// Run feeds the data variables of p from feed, evaluates what fetch needs in
// program order and returns the fetched values in the order requested.
//
// Feed tensors are never written: an in-place clip of a data variable works
// on a copy.
//
// Every feed is checked against its declaration first: a missing or unknown
// name is ErrUsage, a wrong dtype ErrTypeMismatch and a wrong shape
// ErrShapeMismatch.
func (e *Executor) Run(p *Program, feed map[string]*tensor.RawTensor, fetch ...*Var) ([]*tensor.RawTensor, error) {
	if len(fetch) == 0 {
		return nil, tensor.Usagef("run %q: nothing to fetch", p.name)
	}
	for _, v := range fetch {
		if v == nil || v.program != p {
			return nil, tensor.Usagef("run %q: fetched variable %v does not belong to the program", p.name, v)
		}
	}
	for name := range feed {
		if _, ok := p.feeds[name]; !ok {
			return nil, tensor.Usagef("run %q: feed %q is not declared", p.name, name)
		}
	}

	needed := p.needed(fetch)
	values := make([]*tensor.RawTensor, len(p.vars))
	for _, v := range p.vars {
		if !needed[v.id] || v.kind != opData {
			continue
		}
		t, err := checkFeed(v, feed[v.name])
		if err != nil {
			return nil, errors.WithMessagef(err, "run %q", p.name)
		}
		values[v.id] = t
	}

	var evalErr error
	if exc := exceptions.Try(func() { evalErr = e.eval(p, needed, values) }); exc != nil {
		if err, ok := exc.(error); ok {
			return nil, errors.Wrapf(err, "run %q: panic", p.name)
		}
		return nil, errors.Errorf("run %q: panic: %v", p.name, exc)
	}
	if evalErr != nil {
		return nil, evalErr
	}

	out := make([]*tensor.RawTensor, len(fetch))
	for i, v := range fetch {
		out[i] = values[v.id]
	}
	return out, nil
}

// needed marks the variables fetch depends on. A variable reading an input
// also depends on the in-place clips of that input added before it.
func (p *Program) needed(fetch []*Var) []bool {
	needed := make([]bool, len(p.vars))
	stack := append([]*Var(nil), fetch...)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if needed[v.id] {
			continue
		}
		needed[v.id] = true
		stack = append(stack, v.inputs...)
		for _, in := range v.inputs {
			for _, w := range p.inplace[in.id] {
				if w.id < v.id {
					stack = append(stack, w)
				}
			}
		}
	}
	return needed
}

func checkFeed(v *Var, t *tensor.RawTensor) (*tensor.RawTensor, error) {
	if t == nil {
		return nil, tensor.Usagef("missing feed for %s", v)
	}
	if t.DType() != v.dtype {
		return nil, tensor.TypeMismatchf("feed %q: dtype %s, declared %s", v.name, t.DType(), v.dtype)
	}
	shape := t.Shape()
	ok := len(shape) == len(v.shape)
	for i := 0; ok && i < len(shape); i++ {
		ok = v.shape[i] == -1 || v.shape[i] == shape[i]
	}
	if !ok {
		return nil, tensor.ShapeMismatchf("feed %q: shape %v, declared %v", v.name, shape, v.shape)
	}
	return t, nil
}

func (e *Executor) eval(p *Program, needed []bool, values []*tensor.RawTensor) error {
	for _, v := range p.vars {
		if !needed[v.id] || v.kind == opData {
			continue
		}
		out, err := e.evalVar(v, values)
		if err != nil {
			return errors.WithMessagef(err, "run %q: evaluating %s", p.name, v.Name())
		}
		klog.V(2).Infof("run %q: %s -> %s%v", p.name, v.Name(), out.DType(), out.Shape())
		values[v.id] = out
	}
	return nil
}

func (e *Executor) evalVar(v *Var, values []*tensor.RawTensor) (*tensor.RawTensor, error) {
	x := values[v.inputs[0].id]
	switch v.kind {
	case opClip:
		return e.backend.Clip(x, v.lo.resolve(values), v.hi.resolve(values))
	case opClipTensor:
		return e.backend.ClipTensor(x, v.lo.resolve(values).Tensor(), v.hi.resolve(values).Tensor())
	case opClipInplace:
		if in := v.inputs[0]; in.kind == opData {
			x = x.Copy()
			values[in.id] = x
		}
		if err := e.backend.ClipInplace(x, v.lo.resolve(values), v.hi.resolve(values)); err != nil {
			return nil, err
		}
		return x.Clone(), nil
	case opCast:
		return e.backend.Cast(x, v.dtype)
	case opScale:
		return e.backend.MulScalar(x, v.scalar)
	default:
		return nil, errors.Errorf("unexpected op %s", v.kind)
	}
}

func (b bound) resolve(values []*tensor.RawTensor) tensor.Bound {
	if b.v != nil {
		return tensor.TensorBound(values[b.v.id])
	}
	return b.value
}
