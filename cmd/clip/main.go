// Command clip clips a random tensor and prints a summary of the result.
//
//	clip -shape 1,9,9,4 -dtype float32 -min 0.2 -max 0.8 -mode eager
//	clip -dtype int32 -min 2 -max 8 -mode static
//
// Integer dtypes are generated as int(uniform[0,1) * 10). Use "none" for a
// missing bound.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/clip/backend/cpu"
	"github.com/born-ml/clip/static"
	"github.com/born-ml/clip/tensor"
)

const version = "v0.1.0"

var (
	flagShape   = flag.String("shape", "1,9,9,4", "Comma-separated input shape.")
	flagDType   = flag.String("dtype", "float32", "Element type: float16, bfloat16, float32, float64, int32 or int64.")
	flagMin     = flag.String("min", "0.2", `Lower bound, or "none".`)
	flagMax     = flag.String("max", "0.8", `Upper bound, or "none".`)
	flagMode    = flag.String("mode", "eager", "Execution mode: eager or static.")
	flagSeed    = flag.Int64("seed", 1, "Random seed for the input.")
	flagWorkers = flag.Int("workers", 0, "Kernel worker goroutines (0 uses all CPUs, 1 runs sequentially).")
	flagVersion = flag.Bool("version", false, "Print the version and exit.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("clip %s\n", version)
		return
	}

	err := exceptions.TryCatch[error](run)
	if err != nil {
		klog.Errorf("Error:\n%+v", err)
		os.Exit(1)
	}
}

func run() {
	shape := must.M1(parseShape(*flagShape))
	dtype, ok := tensor.ParseDataType(*flagDType)
	if !ok {
		exceptions.Panicf("unknown dtype %q", *flagDType)
	}
	lo, hi := must.M1(parseBound(*flagMin)), must.M1(parseBound(*flagMax))

	cfg := cpu.DefaultConfig()
	if *flagWorkers > 0 {
		cfg.NumWorkers = *flagWorkers
		cfg.Enabled = *flagWorkers > 1
	}
	backend := cpu.NewWithConfig(cfg)

	images := randomImages(shape, *flagSeed)
	klog.V(1).Infof("input %s%v, mode=%s, min=%s, max=%s", dtype, shape, *flagMode, lo, hi)

	var out, in *tensor.RawTensor
	switch *flagMode {
	case "eager":
		in = must.M1(toDType(backend, images, dtype))
		out = must.M1(backend.Clip(in, lo, hi))
	case "static":
		in, out = runStatic(backend, images, dtype)
	default:
		exceptions.Panicf("unknown mode %q (want eager or static)", *flagMode)
	}

	report(backend, in, out, lo, hi)
}

// runStatic builds images -> [scale] -> cast -> clip as a program and runs it.
func runStatic(backend *cpu.Backend, images *tensor.RawTensor, dtype tensor.DataType) (in, out *tensor.RawTensor) {
	var x, y *static.Var
	p := must.M1(static.Build("clip", func(p *static.Program) {
		x = p.MustData("images", images.Shape(), tensor.Float32)
		if !dtype.IsFloat() {
			x = static.MustScale(x, 10)
		}
		x = static.MustCast(x, dtype)
		y = static.MustClip(x, boundArg(*flagMin), boundArg(*flagMax))
	}))
	results := must.M1(static.NewExecutor(backend).Run(p, map[string]*tensor.RawTensor{"images": images}, x, y))
	return results[0], results[1]
}

// boundArg converts a bound flag for static.Clip; flags were validated by parseBound.
func boundArg(s string) any {
	if strings.EqualFold(s, "none") {
		return nil
	}
	return must.M1(strconv.ParseFloat(s, 64))
}

func toDType(backend *cpu.Backend, images *tensor.RawTensor, dtype tensor.DataType) (*tensor.RawTensor, error) {
	x := images
	if !dtype.IsFloat() {
		var err error
		if x, err = backend.MulScalar(x, 10); err != nil {
			return nil, err
		}
	}
	return backend.Cast(x, dtype)
}

func randomImages(shape tensor.Shape, seed int64) *tensor.RawTensor {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = rng.Float32()
	}
	return must.M1(tensor.FromData(data, shape, tensor.CPU))
}

func parseShape(s string) (tensor.Shape, error) {
	var shape tensor.Shape
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing -shape %q", s)
		}
		shape = append(shape, d)
	}
	return shape, shape.Validate()
}

func parseBound(s string) (tensor.Bound, error) {
	if strings.EqualFold(s, "none") {
		return tensor.NoBound(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return tensor.Bound{}, errors.Wrapf(err, "parsing bound %q", s)
	}
	return tensor.Scalar(v), nil
}

func report(backend *cpu.Backend, in, out *tensor.RawTensor, lo, hi tensor.Bound) {
	inVals, outVals := float64s(backend, in), float64s(backend, out)
	lowest, highest := math.Inf(1), math.Inf(-1)
	changed := 0
	for i, v := range outVals {
		lowest, highest = min(lowest, v), max(highest, v)
		if v != inVals[i] {
			changed++
		}
	}

	fmt.Printf("clip(%s%v, min=%s, max=%s) [%s]\n", out.DType(), out.Shape(), lo, hi, *flagMode)
	fmt.Printf("\telements: %s (%s)\n", humanize.Comma(int64(out.NumElements())), humanize.Bytes(uint64(out.ByteSize())))
	fmt.Printf("\tclipped:  %s\n", humanize.Comma(int64(changed)))
	fmt.Printf("\trange:    [%g, %g]\n", lowest, highest)
}

func float64s(backend *cpu.Backend, t *tensor.RawTensor) []float64 {
	return must.M1(backend.Cast(t, tensor.Float64)).AsFloat64()
}
