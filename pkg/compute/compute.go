// Package compute is the in-process numeric backend: named elementwise
// kernels over flat buffers of equal length.
package compute

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/yaklabco/ragged/pkg/broadcast"
	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// result selects the output dtype of a kernel.
type result uint8

const (
	// sameAsInputs gives int64 unless some input is float64.
	sameAsInputs result = iota
	alwaysFloat
	alwaysBool
)

// kernelSpec describes one kernel. ints, when set, runs instead of fn when
// no input is float64, so integer operands keep their full range.
type kernelSpec struct {
	arity int
	out   result
	fn    func(x []float64) float64
	ints  func(x []int64) int64
}

var kernels = map[string]kernelSpec{
	"add": {2, sameAsInputs, func(x []float64) float64 { return x[0] + x[1] },
		func(x []int64) int64 { return x[0] + x[1] }},
	"subtract": {2, sameAsInputs, func(x []float64) float64 { return x[0] - x[1] },
		func(x []int64) int64 { return x[0] - x[1] }},
	"multiply": {2, sameAsInputs, func(x []float64) float64 { return x[0] * x[1] },
		func(x []int64) int64 { return x[0] * x[1] }},
	"divide": {2, alwaysFloat, func(x []float64) float64 { return x[0] / x[1] }, nil},
	"power":  {2, sameAsInputs, func(x []float64) float64 { return math.Pow(x[0], x[1]) }, nil},
	"maximum": {2, sameAsInputs, func(x []float64) float64 { return math.Max(x[0], x[1]) },
		func(x []int64) int64 { return max(x[0], x[1]) }},
	"minimum": {2, sameAsInputs, func(x []float64) float64 { return math.Min(x[0], x[1]) },
		func(x []int64) int64 { return min(x[0], x[1]) }},
	"negative": {1, sameAsInputs, func(x []float64) float64 { return -x[0] },
		func(x []int64) int64 { return -x[0] }},
	"absolute": {1, sameAsInputs, func(x []float64) float64 { return math.Abs(x[0]) },
		func(x []int64) int64 { return max(x[0], -x[0]) }},
	"exp":  {1, alwaysFloat, func(x []float64) float64 { return math.Exp(x[0]) }, nil},
	"log":  {1, alwaysFloat, func(x []float64) float64 { return math.Log(x[0]) }, nil},
	"sqrt": {1, alwaysFloat, func(x []float64) float64 { return math.Sqrt(x[0]) }, nil},
	"equal": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] == x[1]) },
		func(x []int64) int64 { return itruth(x[0] == x[1]) }},
	"not_equal": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] != x[1]) },
		func(x []int64) int64 { return itruth(x[0] != x[1]) }},
	"less": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] < x[1]) },
		func(x []int64) int64 { return itruth(x[0] < x[1]) }},
	"less_equal": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] <= x[1]) },
		func(x []int64) int64 { return itruth(x[0] <= x[1]) }},
	"greater": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] > x[1]) },
		func(x []int64) int64 { return itruth(x[0] > x[1]) }},
	"greater_equal": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] >= x[1]) },
		func(x []int64) int64 { return itruth(x[0] >= x[1]) }},
	"logical_and": {2, alwaysBool, func(x []float64) float64 { return truth(x[0] != 0 && x[1] != 0) }, nil},
	"logical_or":  {2, alwaysBool, func(x []float64) float64 { return truth(x[0] != 0 || x[1] != 0) }, nil},
	"logical_not": {1, alwaysBool, func(x []float64) float64 { return truth(x[0] == 0) }, nil},
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func itruth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Backend implements broadcast.Backend with the kernels above.
type Backend struct{}

var _ broadcast.Backend = Backend{}

// Default is the shared backend value.
var Default = Backend{}

// Names returns the supported operation names in sorted order.
func Names() []string {
	names := lo.Keys(kernels)
	sort.Strings(names)
	return names
}

// Kernel implements broadcast.Backend.
func (Backend) Kernel(name string) (broadcast.Kernel, error) {
	spec, ok := kernels[name]
	if !ok {
		return nil, errs.Invalid("compute", fmt.Sprintf("unknown operation %q", name))
	}
	return func(inputs []*buffer.Buffer) (*buffer.Buffer, error) {
		return run(name, spec, inputs)
	}, nil
}

func run(name string, spec kernelSpec, inputs []*buffer.Buffer) (*buffer.Buffer, error) {
	if len(inputs) != spec.arity {
		return nil, errs.Invalid("compute",
			fmt.Sprintf("%s takes %d operands, got %d", name, spec.arity, len(inputs)))
	}
	n := inputs[0].FlatLen()
	for _, in := range inputs[1:] {
		if in.FlatLen() != n {
			return nil, errs.Shape("compute",
				fmt.Sprintf("%s: operand lengths %d and %d differ", name, n, in.FlatLen()))
		}
	}
	dtype := outputType(spec.out, inputs)
	if spec.ints != nil && !lo.SomeBy(inputs, func(in *buffer.Buffer) bool { return in.DType() == buffer.Float64 }) {
		return runInts(spec.ints, dtype, inputs, n), nil
	}

	out := make([]float64, n)
	args := make([]float64, len(inputs))
	for i := range out {
		for k, in := range inputs {
			args[k] = in.Float(i)
		}
		out[i] = spec.fn(args)
	}
	return buffer.FromFloats(dtype, out), nil
}

func runInts(fn func(x []int64) int64, dtype buffer.DType, inputs []*buffer.Buffer, n int) *buffer.Buffer {
	out := make([]int64, n)
	args := make([]int64, len(inputs))
	for i := range out {
		for k, in := range inputs {
			args[k] = in.Int(i)
		}
		out[i] = fn(args)
	}
	if dtype == buffer.Bool {
		return buffer.FromBools(lo.Map(out, func(x int64, _ int) bool { return x != 0 }))
	}
	return buffer.FromInt64s(out)
}

func outputType(r result, inputs []*buffer.Buffer) buffer.DType {
	switch r {
	case alwaysBool:
		return buffer.Bool
	case alwaysFloat:
		return buffer.Float64
	}
	for _, in := range inputs {
		if in.DType() == buffer.Float64 {
			return buffer.Float64
		}
	}
	return buffer.Int64
}
