// Package static builds clip computations ahead of time and runs them later.
//
// A Program is a list of variables in construction order. Data variables are
// fed at run time; every other variable is the result of an operation on
// earlier ones. Construction validates dtypes and shapes, so most mistakes are
// reported before any numeric work:
//
//	p := static.NewProgram("clip")
//	x, _ := p.Data("x", tensor.Shape{-1, 9, 9, 4}, tensor.Float32)
//	y, _ := static.Clip(x, 0.2, 0.8)
//	out, err := static.NewExecutor(cpu.New()).Run(p, map[string]*tensor.RawTensor{"x": images}, y)
package static

import (
	"fmt"

	"github.com/born-ml/clip/internal/tensor"
)

// Program holds the variables of one static computation.
// It is not safe for concurrent construction.
type Program struct {
	name  string
	vars  []*Var
	feeds map[string]*Var

	// inplace lists the in-place clips writing into each variable, by id.
	inplace map[int][]*Var
}

// NewProgram creates an empty program.
func NewProgram(name string) *Program {
	return &Program{
		name:    name,
		feeds:   make(map[string]*Var),
		inplace: make(map[int][]*Var),
	}
}

// Name returns the program name.
func (p *Program) Name() string {
	return p.name
}

// NumVars returns the number of variables in the program.
func (p *Program) NumVars() int {
	return len(p.vars)
}

// Lookup returns the data variable declared with name, or nil.
func (p *Program) Lookup(name string) *Var {
	return p.feeds[name]
}

// Data declares an input fed at run time. Dimensions of -1 accept any size.
func (p *Program) Data(name string, shape tensor.Shape, dtype tensor.DataType) (*Var, error) {
	if name == "" {
		return nil, tensor.Usagef("data: empty name")
	}
	if _, dup := p.feeds[name]; dup {
		return nil, tensor.Usagef("data: %q already declared in program %q", name, p.name)
	}
	if !dtype.Valid() {
		return nil, tensor.TypeMismatchf("data %q: unknown dtype %s", name, dtype)
	}
	for i, d := range shape {
		if d == 0 || d < -1 {
			return nil, tensor.ShapeMismatchf("data %q: invalid dimension %d at axis %d", name, d, i)
		}
	}
	v := p.add(&Var{kind: opData, name: name, shape: shape.Clone(), dtype: dtype})
	p.feeds[name] = v
	return v, nil
}

// MustData is Data that panics on error.
func (p *Program) MustData(name string, shape tensor.Shape, dtype tensor.DataType) *Var {
	return mustVar(p.Data(name, shape, dtype))
}

func (p *Program) add(v *Var) *Var {
	v.program = p
	v.id = len(p.vars)
	p.vars = append(p.vars, v)
	if v.kind == opClipInplace {
		target := v.inputs[0].id
		p.inplace[target] = append(p.inplace[target], v)
	}
	return v
}

type opKind int

const (
	opData opKind = iota
	opClip
	opClipTensor
	opClipInplace
	opCast
	opScale
)

func (k opKind) String() string {
	switch k {
	case opData:
		return "data"
	case opClip:
		return "clip"
	case opClipTensor:
		return "clip_tensor"
	case opClipInplace:
		return "clip_"
	case opCast:
		return "cast"
	case opScale:
		return "scale"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Var is a symbolic tensor of a Program.
type Var struct {
	program *Program
	id      int
	kind    opKind
	name    string
	shape   tensor.Shape
	dtype   tensor.DataType

	inputs []*Var
	lo, hi bound
	scalar float64
}

// bound is a clip bound at construction time. Tensor bounds refer to
// variables and are resolved when the program runs.
type bound struct {
	value tensor.Bound
	v     *Var
}

// Program returns the program v belongs to.
func (v *Var) Program() *Program {
	return v.program
}

// Shape returns the static shape; -1 marks a size known only at run time.
func (v *Var) Shape() tensor.Shape {
	return v.shape
}

// DType returns the element type.
func (v *Var) DType() tensor.DataType {
	return v.dtype
}

// Name returns the feed name of a data variable, or a generated name.
func (v *Var) Name() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("%s_%d", v.kind, v.id)
}

// String returns a short description of v.
func (v *Var) String() string {
	return fmt.Sprintf("%s: %s%v", v.Name(), v.dtype, v.shape)
}
