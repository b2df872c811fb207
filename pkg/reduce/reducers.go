package reduce

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/yaklabco/ragged/pkg/buffer"
)

// Reducer is an associative fold with an identity. Prepare maps each input
// value before it is combined; nil means the value is used as is.
type Reducer struct {
	Name     string
	Identity float64
	Prepare  func(x float64) float64
	Combine  func(acc, x float64) float64

	// IntIdentity, IntPrepare and IntCombine fold integer and bool inputs
	// in int64 when the output is int64. Without IntCombine those inputs
	// are folded as float64.
	IntIdentity int64
	IntPrepare  func(x int64) int64
	IntCombine  func(acc, x int64) int64

	// Output maps the input dtype to the result dtype.
	Output func(in buffer.DType) buffer.DType
}

func integerOrFloat(in buffer.DType) buffer.DType {
	if in == buffer.Float64 {
		return buffer.Float64
	}
	return buffer.Int64
}

func sameKind(in buffer.DType) buffer.DType {
	switch {
	case in == buffer.Float64, in == buffer.Bool:
		return in
	default:
		return buffer.Int64
	}
}

func always(d buffer.DType) func(buffer.DType) buffer.DType {
	return func(buffer.DType) buffer.DType { return d }
}

func addInt(acc, x int64) int64 { return acc + x }

func one(int64) int64 { return 1 }

func nonzeroInt(x int64) int64 {
	if x != 0 {
		return 1
	}
	return 0
}

func nonzero(x float64) float64 {
	if x != 0 {
		return 1
	}
	return 0
}

// Built-in reducers.
var (
	Sum = Reducer{
		Name: "sum", Identity: 0,
		Combine: func(acc, x float64) float64 { return acc + x },
		Output:  integerOrFloat,

		IntCombine: addInt,
	}
	Prod = Reducer{
		Name: "prod", Identity: 1,
		Combine: func(acc, x float64) float64 { return acc * x },
		Output:  integerOrFloat,

		IntIdentity: 1,
		IntCombine:  func(acc, x int64) int64 { return acc * x },
	}
	Min = Reducer{
		Name: "min", Identity: math.Inf(1),
		Combine: math.Min,
		Output:  sameKind,

		IntIdentity: math.MaxInt64,
		IntCombine:  func(acc, x int64) int64 { return min(acc, x) },
	}
	Max = Reducer{
		Name: "max", Identity: math.Inf(-1),
		Combine: math.Max,
		Output:  sameKind,

		IntIdentity: math.MinInt64,
		IntCombine:  func(acc, x int64) int64 { return max(acc, x) },
	}
	Count = Reducer{
		Name: "count", Identity: 0,
		Prepare: func(float64) float64 { return 1 },
		Combine: func(acc, x float64) float64 { return acc + x },
		Output:  always(buffer.Int64),

		IntPrepare: one,
		IntCombine: addInt,
	}
	CountNonzero = Reducer{
		Name: "count_nonzero", Identity: 0,
		Prepare: nonzero,
		Combine: func(acc, x float64) float64 { return acc + x },
		Output:  always(buffer.Int64),

		IntPrepare: nonzeroInt,
		IntCombine: addInt,
	}
	Any = Reducer{
		Name: "any", Identity: 0,
		Prepare: nonzero,
		Combine: math.Max,
		Output:  always(buffer.Bool),
	}
	All = Reducer{
		Name: "all", Identity: 1,
		Prepare: nonzero,
		Combine: math.Min,
		Output:  always(buffer.Bool),
	}
)

var registry = lo.KeyBy([]Reducer{Sum, Prod, Min, Max, Count, CountNonzero, Any, All},
	func(r Reducer) string { return r.Name })

// Lookup returns the built-in reducer with the given name.
func Lookup(name string) (Reducer, bool) {
	r, ok := registry[name]
	return r, ok
}

// Names returns the built-in reducer names in sorted order.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// fold combines data into outlength groups. It returns the results in the
// output dtype and how many values each group received.
func (r Reducer) fold(data *buffer.Buffer, parents []int64, outlength int) (*buffer.Buffer, []int) {
	dtype := r.Output(data.DType())
	if dtype == buffer.Int64 && data.DType() != buffer.Float64 && r.IntCombine != nil {
		acc, counts := foldGroups(data.Int64s(), parents, outlength, r.IntIdentity, r.IntPrepare, r.IntCombine)
		return buffer.FromInt64s(acc), counts
	}
	acc, counts := foldGroups(data.Float64s(), parents, outlength, r.Identity, r.Prepare, r.Combine)
	return toBuffer(dtype, acc), counts
}

// foldGroups folds values left to right into the group named by parents,
// starting each group from identity.
func foldGroups[T int64 | float64](values []T, parents []int64, outlength int,
	identity T, prepare func(T) T, combine func(acc, x T) T,
) ([]T, []int) {
	acc := make([]T, outlength)
	counts := make([]int, outlength)
	for g := range acc {
		acc[g] = identity
	}
	for i, x := range values {
		if prepare != nil {
			x = prepare(x)
		}
		g := parents[i]
		acc[g] = combine(acc[g], x)
		counts[g]++
	}
	return acc, counts
}

// toBuffer converts fold results into dtype. Infinite identities become the
// extreme int64 values for integer outputs.
func toBuffer(dtype buffer.DType, values []float64) *buffer.Buffer {
	if dtype != buffer.Int64 {
		return buffer.FromFloats(dtype, values)
	}
	out := make([]int64, len(values))
	for i, x := range values {
		switch {
		case math.IsInf(x, 1):
			out[i] = math.MaxInt64
		case math.IsInf(x, -1):
			out[i] = math.MinInt64
		default:
			out[i] = int64(x)
		}
	}
	return buffer.FromInt64s(out)
}
