package static

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/clip/internal/backend/cpu"
	"github.com/born-ml/clip/internal/tensor"
)

func randImages(t *testing.T, seed int64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = rng.Float32()
	}
	raw, err := tensor.FromData(data, shape, tensor.CPU)
	require.NoError(t, err)
	return raw
}

func TestData(t *testing.T) {
	p := NewProgram("data")

	x, err := p.Data("x", tensor.Shape{-1, 4}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{-1, 4}, x.Shape())
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, "x", x.Name())
	assert.Same(t, x, p.Lookup("x"))
	assert.Same(t, p, x.Program())

	_, err = p.Data("x", tensor.Shape{4}, tensor.Float32)
	assert.ErrorIs(t, err, tensor.ErrUsage)

	_, err = p.Data("y", tensor.Shape{0, 4}, tensor.Float32)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = p.Data("", tensor.Shape{1}, tensor.Float32)
	assert.ErrorIs(t, err, tensor.ErrUsage)
}

func TestClip_Construction(t *testing.T) {
	p := NewProgram("clip")
	x := p.MustData("x", tensor.Shape{-1, 9, 9, 4}, tensor.Float32)

	t.Run("ScalarBounds", func(t *testing.T) {
		y, err := Clip(x, 0.2, 0.8)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{-1, 9, 9, 4}, y.Shape())
		assert.Equal(t, tensor.Float32, y.DType())
	})

	t.Run("VarBoundsBroadcast", func(t *testing.T) {
		lo := p.MustData("lo", tensor.Shape{4}, tensor.Float32)
		hi := p.MustData("hi", tensor.Shape{3, 1, 9, 9, 1}, tensor.Float32)
		y, err := Clip(x, lo, hi)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{3, -1, 9, 9, 4}, y.Shape())
	})

	t.Run("MissingBounds", func(t *testing.T) {
		y, err := Clip(x, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, x.Shape(), y.Shape())
	})
}

func TestClip_ConstructionErrors(t *testing.T) {
	p := NewProgram("errors")
	x := p.MustData("x", tensor.Shape{4, 5}, tensor.Float32)
	other := NewProgram("other").MustData("o", tensor.Shape{5}, tensor.Float32)
	eager := randImages(t, 1, tensor.Shape{4, 5})

	tests := []struct {
		name   string
		x      any
		lo, hi any
		want   error
	}{
		{"Int16Input", p.MustData("i16", tensor.Shape{2}, tensor.Int16), 1, 2, tensor.ErrTypeMismatch},
		{"Int8Input", p.MustData("i8", tensor.Shape{2}, tensor.Int8), 1, 2, tensor.ErrTypeMismatch},
		{"RawSliceInput", []float32{0.1, 0.2}, 0.2, 0.8, tensor.ErrUsage},
		{"EagerTensorInput", eager, 0.2, 0.8, tensor.ErrUsage},
		{"RawSliceBound", x, []float32{0.2}, 0.8, tensor.ErrUsage},
		{"EagerTensorBound", x, eager, nil, tensor.ErrUsage},
		{"StringBound", x, "0.2", nil, tensor.ErrUsage},
		{"OtherProgram", x, other, nil, tensor.ErrUsage},
		{"BoundDType", x, p.MustData("f64", tensor.Shape{5}, tensor.Float64), nil, tensor.ErrTypeMismatch},
		{"Unbroadcastable", x, p.MustData("f3", tensor.Shape{3}, tensor.Float32), nil, tensor.ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Clip(tt.x, tt.lo, tt.hi)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("ClipTensorNilBound", func(t *testing.T) {
		_, err := ClipTensor(x, nil, x)
		assert.ErrorIs(t, err, tensor.ErrUsage)
	})
}

func TestBuild(t *testing.T) {
	var y *Var
	p, err := Build("ok", func(p *Program) {
		x := p.MustData("x", tensor.Shape{4, 5}, tensor.Float32)
		y = MustClip(x, 0.2, 0.8)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumVars())
	assert.Same(t, p, y.Program())

	_, err = Build("bad", func(p *Program) {
		x := p.MustData("x", tensor.Shape{2}, tensor.Int16)
		MustClip(x, 1, 2)
	})
	assert.ErrorIs(t, err, tensor.ErrTypeMismatch)

	_, err = Build("slice", func(_ *Program) {
		MustClip([]float32{1, 2}, 0, 1)
	})
	assert.ErrorIs(t, err, tensor.ErrUsage)
}

// Eager and static execution of the same computations agree within 1e-5.
func TestRun_MatchesEager(t *testing.T) {
	backend := cpu.New()
	exe := NewExecutor(backend)
	images := randImages(t, 7, tensor.Shape{1, 9, 9, 4})

	t.Run("ScalarBounds", func(t *testing.T) {
		p := NewProgram("scalar")
		x := p.MustData("x", tensor.Shape{-1, 9, 9, 4}, tensor.Float32)
		y := MustClip(x, 0.2, 0.8)

		out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": images}, y)
		require.NoError(t, err)

		want, err := backend.Clip(images, tensor.Scalar(0.2), tensor.Scalar(0.8))
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.AsFloat32(), out[0].AsFloat32(), 1e-5)
	})

	t.Run("TensorBounds", func(t *testing.T) {
		p := NewProgram("tensor")
		x := p.MustData("x", tensor.Shape{4, 5}, tensor.Float32)
		lo := p.MustData("lo", tensor.Shape{5}, tensor.Float32)
		hi := p.MustData("hi", tensor.Shape{4, 5}, tensor.Float32)
		y := MustClipTensor(x, lo, hi)

		xv := randImages(t, 8, tensor.Shape{4, 5})
		lov := randImages(t, 9, tensor.Shape{5})
		hiv := randImages(t, 10, tensor.Shape{4, 5})
		out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": xv, "lo": lov, "hi": hiv}, y)
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{4, 5}, out[0].Shape())

		want, err := backend.ClipTensor(xv, lov, hiv)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.AsFloat32(), out[0].AsFloat32(), 1e-5)
	})

	t.Run("ScaledIntegers", func(t *testing.T) {
		p := NewProgram("int32")
		x := p.MustData("x", tensor.Shape{1, 9, 9, 4}, tensor.Float32)
		ints := MustCast(MustScale(x, 10), tensor.Int32)
		y := MustClip(ints, 2, 8)

		out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": images}, y, ints)
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Equal(t, tensor.Int32, out[0].DType())

		for i, v := range out[1].AsInt32() {
			assert.Equal(t, min(max(v, 2), 8), out[0].AsInt32()[i], "element %d", i)
		}
	})
}

func TestRun_FeedErrors(t *testing.T) {
	exe := NewExecutor(cpu.New())
	p := NewProgram("feeds")
	x := p.MustData("x", tensor.Shape{-1, 4}, tensor.Float32)
	y := MustClip(x, 0, 1)

	f64, err := tensor.FromData([]float64{1, 2, 3, 4}, tensor.Shape{1, 4}, tensor.CPU)
	require.NoError(t, err)

	tests := []struct {
		name  string
		feed  map[string]*tensor.RawTensor
		fetch []*Var
		want  error
	}{
		{"Missing", nil, []*Var{y}, tensor.ErrUsage},
		{"Unknown", map[string]*tensor.RawTensor{"x": randImages(t, 1, tensor.Shape{2, 4}), "z": f64}, []*Var{y}, tensor.ErrUsage},
		{"DType", map[string]*tensor.RawTensor{"x": f64}, []*Var{y}, tensor.ErrTypeMismatch},
		{"Rank", map[string]*tensor.RawTensor{"x": randImages(t, 1, tensor.Shape{4})}, []*Var{y}, tensor.ErrShapeMismatch},
		{"Dim", map[string]*tensor.RawTensor{"x": randImages(t, 1, tensor.Shape{2, 5})}, []*Var{y}, tensor.ErrShapeMismatch},
		{"NoFetch", map[string]*tensor.RawTensor{"x": randImages(t, 1, tensor.Shape{2, 4})}, nil, tensor.ErrUsage},
		{"ForeignFetch", nil, []*Var{NewProgram("other").MustData("x", tensor.Shape{1}, tensor.Float32)}, tensor.ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exe.Run(p, tt.feed, tt.fetch...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("AnySizeDim", func(t *testing.T) {
		out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": randImages(t, 2, tensor.Shape{3, 4})}, y)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{3, 4}, out[0].Shape())
	})
}

// A bound with a known dimension against an unknown input dimension is only
// checked at run time.
func TestRun_RuntimeBroadcastError(t *testing.T) {
	exe := NewExecutor(cpu.New())
	p := NewProgram("runtime")
	x := p.MustData("x", tensor.Shape{-1}, tensor.Float32)
	lo := p.MustData("lo", tensor.Shape{3}, tensor.Float32)
	y := MustClip(x, lo, nil)
	assert.Equal(t, tensor.Shape{3}, y.Shape())

	_, err := exe.Run(p, map[string]*tensor.RawTensor{
		"x":  randImages(t, 1, tensor.Shape{4}),
		"lo": randImages(t, 2, tensor.Shape{3}),
	}, y)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestRun_OnlyNeededFeeds(t *testing.T) {
	exe := NewExecutor(cpu.New())
	p := NewProgram("partial")
	a := p.MustData("a", tensor.Shape{2}, tensor.Float32)
	b := p.MustData("b", tensor.Shape{2}, tensor.Float32)
	ya := MustClip(a, 0, 0.5)
	MustClip(b, 0, 0.5)

	out, err := exe.Run(p, map[string]*tensor.RawTensor{"a": randImages(t, 3, tensor.Shape{2})}, ya)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestBroadcastStatic(t *testing.T) {
	tests := []struct {
		in   []tensor.Shape
		want tensor.Shape
	}{
		{[]tensor.Shape{{4, 5}, {5}, {}}, tensor.Shape{4, 5}},
		{[]tensor.Shape{{-1, 5}, {1}, {4, 1, 1}}, tensor.Shape{4, -1, 5}},
		{[]tensor.Shape{{-1}, {3}}, tensor.Shape{3}},
		{[]tensor.Shape{{-1}, {-1}}, tensor.Shape{-1}},
	}
	for _, tt := range tests {
		got, err := broadcastStatic(tt.in...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "broadcast %v", tt.in)
	}

	_, err := broadcastStatic(tensor.Shape{4}, tensor.Shape{5})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestMust_PanicsWithConstructionError(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	func() {
		defer func() {
			err, ok := recover().(error)
			require.True(t, ok, "panic value must be the construction error")
			assert.ErrorIs(t, err, tensor.ErrUsage)
		}()
		MustClip([]float32{1}, 0, 1)
	}()

	_, err := Build("quiet", func(p *Program) {
		MustClipInplace(p.MustData("x", tensor.Shape{2}, tensor.Int16), 0, 1)
	})
	assert.ErrorIs(t, err, tensor.ErrTypeMismatch)
	assert.Empty(t, logged.String())
}

func TestData_UnknownDType(t *testing.T) {
	_, err := NewProgram("dtype").Data("bad", tensor.Shape{1}, tensor.DataType(99))
	assert.ErrorIs(t, err, tensor.ErrTypeMismatch)
}

func TestClip_UnsignedBounds(t *testing.T) {
	p := NewProgram("unsigned")
	x := p.MustData("x", tensor.Shape{3}, tensor.Int64)
	for _, b := range []any{uint(1), uint16(1), uint32(1), uint64(1), uint64(math.MaxUint64)} {
		_, err := Clip(x, b, nil)
		assert.NoError(t, err, "bound %T", b)
	}

	y := MustClip(x, uint(2), uint64(math.MaxUint64))
	xv, err := tensor.FromData([]int64{1, 5, math.MaxInt64}, tensor.Shape{3}, tensor.CPU)
	require.NoError(t, err)
	out, err := NewExecutor(cpu.New()).Run(p, map[string]*tensor.RawTensor{"x": xv}, y)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, math.MaxInt64}, out[0].AsInt64())
}

func TestClipInplace_Construction(t *testing.T) {
	p := NewProgram("inplace")
	x := p.MustData("x", tensor.Shape{-1, 4}, tensor.Float32)

	y, err := ClipInplace(x, 0.2, 0.8)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{-1, 4}, y.Shape())
	assert.Equal(t, "clip__1", y.Name())

	y, err = ClipInplace(x, p.MustData("lo", tensor.Shape{3, 4}, tensor.Float32), nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, y.Shape())

	tests := []struct {
		name   string
		x      any
		lo, hi any
		want   error
	}{
		{"GrowsRank", x, p.MustData("lo3", tensor.Shape{2, 1, 4}, tensor.Float32), nil, tensor.ErrShapeMismatch},
		{"GrowsDim", p.MustData("x1", tensor.Shape{1, 4}, tensor.Float32), p.MustData("lo5", tensor.Shape{5, 4}, tensor.Float32), nil, tensor.ErrShapeMismatch},
		{"RawSlice", []float32{1}, 0, 1, tensor.ErrUsage},
		{"Int8", p.MustData("i8", tensor.Shape{2}, tensor.Int8), 0, 1, tensor.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClipInplace(tt.x, tt.lo, tt.hi)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// The in-place variant gives the same results as eager clipping.
func TestRunInplace_MatchesEager(t *testing.T) {
	backend := cpu.New()
	exe := NewExecutor(backend)
	images := randImages(t, 7, tensor.Shape{1, 9, 9, 4})
	original := images.Copy()

	bounds := []struct {
		name   string
		lo, hi any
		eager  [2]tensor.Bound
	}{
		{"ScalarBounds", 0.2, 0.8, [2]tensor.Bound{tensor.Scalar(0.2), tensor.Scalar(0.8)}},
		{"OnlyMax", nil, 0.5, [2]tensor.Bound{tensor.NoBound(), tensor.Scalar(0.5)}},
		{"MissingBounds", nil, nil, [2]tensor.Bound{tensor.NoBound(), tensor.NoBound()}},
	}
	for _, bt := range bounds {
		t.Run(bt.name, func(t *testing.T) {
			p := NewProgram(bt.name)
			x := p.MustData("x", tensor.Shape{-1, 9, 9, 4}, tensor.Float32)
			y := MustClipInplace(x, bt.lo, bt.hi)

			out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": images}, y)
			require.NoError(t, err)

			want, err := backend.Clip(images, bt.eager[0], bt.eager[1])
			require.NoError(t, err)
			assert.InDeltaSlice(t, want.AsFloat32(), out[0].AsFloat32(), 1e-5)
			assert.Equal(t, original.AsFloat32(), images.AsFloat32(), "feed must not be written")
		})
	}

	t.Run("TensorBounds", func(t *testing.T) {
		p := NewProgram("tensor")
		x := p.MustData("x", tensor.Shape{4, 5}, tensor.Float32)
		lo := p.MustData("lo", tensor.Shape{5}, tensor.Float32)
		hi := p.MustData("hi", tensor.Shape{4, 5}, tensor.Float32)
		y := MustClipInplace(x, lo, hi)

		xv := randImages(t, 8, tensor.Shape{4, 5})
		lov := randImages(t, 9, tensor.Shape{5})
		hiv := randImages(t, 10, tensor.Shape{4, 5})
		out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": xv, "lo": lov, "hi": hiv}, y)
		require.NoError(t, err)

		want, err := backend.ClipTensor(xv, lov, hiv)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.AsFloat32(), out[0].AsFloat32(), 1e-5)
	})

	for _, dtype := range []tensor.DataType{tensor.Float64, tensor.Int32, tensor.Int64} {
		t.Run("Cast/"+dtype.String(), func(t *testing.T) {
			p := NewProgram("cast")
			x := p.MustData("x", tensor.Shape{1, 9, 9, 4}, tensor.Float32)
			if !dtype.IsFloat() {
				x = MustScale(x, 10)
			}
			lo, hi := 2.0, 8.0
			if dtype.IsFloat() {
				lo, hi = 0.2, 0.8
			}
			y := MustClipInplace(MustCast(x, dtype), lo, hi)

			out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": images}, y)
			require.NoError(t, err)
			require.Equal(t, dtype, out[0].DType())

			in := images
			if !dtype.IsFloat() {
				in, err = backend.MulScalar(images, 10)
				require.NoError(t, err)
			}
			cast, err := backend.Cast(in, dtype)
			require.NoError(t, err)
			want, err := backend.Clip(cast, tensor.Scalar(lo), tensor.Scalar(hi))
			require.NoError(t, err)

			got, err := backend.Cast(out[0], tensor.Float64)
			require.NoError(t, err)
			wantF, err := backend.Cast(want, tensor.Float64)
			require.NoError(t, err)
			assert.InDeltaSlice(t, wantF.AsFloat64(), got.AsFloat64(), 1e-5)
		})
	}
}

// A later reader of the clipped variable sees the clipped values even when
// only the reader is fetched.
func TestRunInplace_LaterReadersSeeResult(t *testing.T) {
	exe := NewExecutor(cpu.New())
	p := NewProgram("order")
	x := p.MustData("x", tensor.Shape{3}, tensor.Float32)
	before := MustScale(x, 1)
	MustClipInplace(x, 0, 1)
	after := MustScale(x, 1)

	xv, err := tensor.FromData([]float32{-1, 0.5, 2}, tensor.Shape{3}, tensor.CPU)
	require.NoError(t, err)
	out, err := exe.Run(p, map[string]*tensor.RawTensor{"x": xv}, before, after)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0.5, 2}, out[0].AsFloat32())
	assert.Equal(t, []float32{0, 0.5, 1}, out[1].AsFloat32())
	assert.Equal(t, []float32{-1, 0.5, 2}, xv.AsFloat32())

	out, err = exe.Run(p, map[string]*tensor.RawTensor{"x": xv}, after)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, 1}, out[0].AsFloat32())
}
