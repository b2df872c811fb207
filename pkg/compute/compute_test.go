package compute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/compute"
	"github.com/yaklabco/ragged/pkg/errs"
)

func TestKernelOutputTypes(t *testing.T) {
	t.Parallel()

	a := buffer.FromInt64s([]int64{1, 2, 3})
	b := buffer.FromInt64s([]int64{2, 2, 2})
	f := buffer.FromFloat64s([]float64{0.5, 0.5, 0.5})

	tests := []struct {
		op     string
		inputs []*buffer.Buffer
		dtype  buffer.DType
		want   []float64
	}{
		{"add", []*buffer.Buffer{a, b}, buffer.Int64, []float64{3, 4, 5}},
		{"add", []*buffer.Buffer{a, f}, buffer.Float64, []float64{1.5, 2.5, 3.5}},
		{"divide", []*buffer.Buffer{a, b}, buffer.Float64, []float64{0.5, 1, 1.5}},
		{"less", []*buffer.Buffer{a, b}, buffer.Bool, []float64{1, 0, 0}},
		{"negative", []*buffer.Buffer{a}, buffer.Int64, []float64{-1, -2, -3}},
		{"maximum", []*buffer.Buffer{a, b}, buffer.Int64, []float64{2, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			t.Parallel()

			kernel, err := compute.Default.Kernel(tt.op)
			require.NoError(t, err)

			out, err := kernel(tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, out.DType())
			assert.Equal(t, tt.want, out.Float64s())
		})
	}
}

func TestKernelArityAndLength(t *testing.T) {
	t.Parallel()

	kernel, err := compute.Default.Kernel("add")
	require.NoError(t, err)

	_, err = kernel([]*buffer.Buffer{buffer.FromInt64s([]int64{1})})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = kernel([]*buffer.Buffer{buffer.FromInt64s([]int64{1}), buffer.FromInt64s([]int64{1, 2})})
	require.ErrorIs(t, err, errs.ErrIncompatibleShape)
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := compute.Names()
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "exp")
	assert.IsNonDecreasing(t, names)
}

func TestIntegerKernelsKeepFullRange(t *testing.T) {
	t.Parallel()

	const big = int64(1)<<53 + 1
	a := buffer.FromInt64s([]int64{big, -big})
	b := buffer.FromInt64s([]int64{1, big})

	tests := []struct {
		op   string
		want []int64
	}{
		{"add", []int64{big + 1, 0}},
		{"subtract", []int64{big - 1, -2 * big}},
		{"maximum", []int64{big, big}},
		{"equal", []int64{0, 0}},
		{"greater", []int64{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			t.Parallel()

			kernel, err := compute.Default.Kernel(tt.op)
			require.NoError(t, err)

			out, err := kernel([]*buffer.Buffer{a, b})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Int64s())
		})
	}

	kernel, err := compute.Default.Kernel("equal")
	require.NoError(t, err)
	out, err := kernel([]*buffer.Buffer{a, buffer.FromInt64s([]int64{big - 1, -big})})
	require.NoError(t, err)
	assert.Equal(t, buffer.Bool, out.DType())
	assert.Equal(t, []int64{0, 1}, out.Int64s())
}
