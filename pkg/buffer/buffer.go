// Package buffer provides the flat, homogeneous numeric arrays that layout
// nodes reference.
//
// A Buffer is treated as externally owned: nothing in ragged resizes or
// mutates one in place. Operations that derive data (Take, Slice, casts)
// return new Buffers; Slice shares the backing array.
package buffer

import (
	"fmt"
	"math"
	"strings"
)

// DType is the element type of a Buffer.
type DType uint8

// Supported element types.
const (
	Bool DType = iota
	Int8
	Uint8
	Int32
	Int64
	Float64
)

// String returns the type name used in forms and type strings.
func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// IsInteger reports whether d is a signed or unsigned integer type.
func (d DType) IsInteger() bool {
	return d == Int8 || d == Uint8 || d == Int32 || d == Int64
}

// ParseDType parses a type name produced by DType.String.
func ParseDType(name string) (DType, error) {
	switch strings.ToLower(name) {
	case "bool":
		return Bool, nil
	case "int8":
		return Int8, nil
	case "uint8":
		return Uint8, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	case "float64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", name)
	}
}

// Buffer is a flat array with an element type and an optional
// multi-dimensional shape.
type Buffer struct {
	dtype DType

	// data is one of []bool, []int8, []uint8, []int32, []int64, []float64.
	data any

	// shape is nil for one-dimensional buffers. Otherwise the product of
	// shape equals the flat length and shape[0] is the outer length.
	shape []int
}

// FromBools wraps a []bool without copying.
func FromBools(v []bool) *Buffer { return &Buffer{dtype: Bool, data: v} }

// FromInt8s wraps a []int8 without copying.
func FromInt8s(v []int8) *Buffer { return &Buffer{dtype: Int8, data: v} }

// FromUint8s wraps a []uint8 without copying.
func FromUint8s(v []uint8) *Buffer { return &Buffer{dtype: Uint8, data: v} }

// FromInt32s wraps a []int32 without copying.
func FromInt32s(v []int32) *Buffer { return &Buffer{dtype: Int32, data: v} }

// FromInt64s wraps a []int64 without copying.
func FromInt64s(v []int64) *Buffer { return &Buffer{dtype: Int64, data: v} }

// FromFloat64s wraps a []float64 without copying.
func FromFloat64s(v []float64) *Buffer { return &Buffer{dtype: Float64, data: v} }

// Empty returns a zero-length buffer of the given type.
func Empty(dtype DType) *Buffer {
	return Zeros(dtype, 0)
}

// Zeros allocates a buffer of length n filled with zero values.
func Zeros(dtype DType, n int) *Buffer {
	switch dtype {
	case Bool:
		return FromBools(make([]bool, n))
	case Int8:
		return FromInt8s(make([]int8, n))
	case Uint8:
		return FromUint8s(make([]uint8, n))
	case Int32:
		return FromInt32s(make([]int32, n))
	case Int64:
		return FromInt64s(make([]int64, n))
	default:
		return FromFloat64s(make([]float64, n))
	}
}

// Full allocates an int64 buffer of length n filled with value.
func Full(value int64, n int) *Buffer {
	out := make([]int64, n)
	for i := range out {
		out[i] = value
	}
	return FromInt64s(out)
}

// Arange allocates an int64 buffer counting from 0 to n-1.
func Arange(n int) *Buffer {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return FromInt64s(out)
}

// Reshape returns a view of b with the given shape. The product of shape
// must equal the flat length.
func (b *Buffer) Reshape(shape ...int) (*Buffer, error) {
	total := 1
	for _, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("negative dimension %d", s)
		}
		total *= s
	}
	if len(shape) == 0 || total != b.FlatLen() {
		return nil, fmt.Errorf("cannot reshape %d elements into %v", b.FlatLen(), shape)
	}
	out := &Buffer{dtype: b.dtype, data: b.data}
	if len(shape) > 1 {
		out.shape = append([]int(nil), shape...)
	}
	return out, nil
}

// DType returns the element type.
func (b *Buffer) DType() DType { return b.dtype }

// Shape returns the shape. A one-dimensional buffer reports [Len()].
func (b *Buffer) Shape() []int {
	if b.shape == nil {
		return []int{b.FlatLen()}
	}
	return append([]int(nil), b.shape...)
}

// NDim returns the number of dimensions.
func (b *Buffer) NDim() int {
	if b.shape == nil {
		return 1
	}
	return len(b.shape)
}

// Len returns the outer length.
func (b *Buffer) Len() int {
	if b.shape != nil {
		return b.shape[0]
	}
	return b.FlatLen()
}

// FlatLen returns the total number of elements.
func (b *Buffer) FlatLen() int {
	switch v := b.data.(type) {
	case []bool:
		return len(v)
	case []int8:
		return len(v)
	case []uint8:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float64:
		return len(v)
	default:
		return 0
	}
}

// Raw returns the backing slice. Callers must not modify it.
func (b *Buffer) Raw() any { return b.data }

// Int returns element i of the flat data as an int64. Floats are truncated.
func (b *Buffer) Int(i int) int64 {
	switch v := b.data.(type) {
	case []bool:
		if v[i] {
			return 1
		}
		return 0
	case []int8:
		return int64(v[i])
	case []uint8:
		return int64(v[i])
	case []int32:
		return int64(v[i])
	case []int64:
		return v[i]
	case []float64:
		return int64(v[i])
	default:
		panic("buffer: uninitialized")
	}
}

// Float returns element i of the flat data as a float64.
func (b *Buffer) Float(i int) float64 {
	switch v := b.data.(type) {
	case []float64:
		return v[i]
	default:
		return float64(b.Int(i))
	}
}

// IsTrue reports whether element i is nonzero.
func (b *Buffer) IsTrue(i int) bool {
	switch v := b.data.(type) {
	case []bool:
		return v[i]
	case []float64:
		return v[i] != 0
	default:
		return b.Int(i) != 0
	}
}

// Slice returns the flat elements [start, stop) sharing the backing array.
// The result is one-dimensional.
func (b *Buffer) Slice(start, stop int) *Buffer {
	switch v := b.data.(type) {
	case []bool:
		return FromBools(v[start:stop:stop])
	case []int8:
		return FromInt8s(v[start:stop:stop])
	case []uint8:
		return FromUint8s(v[start:stop:stop])
	case []int32:
		return FromInt32s(v[start:stop:stop])
	case []int64:
		return FromInt64s(v[start:stop:stop])
	case []float64:
		return FromFloat64s(v[start:stop:stop])
	default:
		return Empty(b.dtype)
	}
}

// Take gathers flat elements by index into a new one-dimensional buffer.
// Every index must be in range.
func (b *Buffer) Take(index []int64) *Buffer {
	switch v := b.data.(type) {
	case []bool:
		return FromBools(gather(v, index))
	case []int8:
		return FromInt8s(gather(v, index))
	case []uint8:
		return FromUint8s(gather(v, index))
	case []int32:
		return FromInt32s(gather(v, index))
	case []int64:
		return FromInt64s(gather(v, index))
	case []float64:
		return FromFloat64s(gather(v, index))
	default:
		return Empty(b.dtype)
	}
}

func gather[T any](src []T, index []int64) []T {
	out := make([]T, len(index))
	for i, j := range index {
		out[i] = src[j]
	}
	return out
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	var out *Buffer
	switch v := b.data.(type) {
	case []bool:
		out = FromBools(append([]bool(nil), v...))
	case []int8:
		out = FromInt8s(append([]int8(nil), v...))
	case []uint8:
		out = FromUint8s(append([]uint8(nil), v...))
	case []int32:
		out = FromInt32s(append([]int32(nil), v...))
	case []int64:
		out = FromInt64s(append([]int64(nil), v...))
	case []float64:
		out = FromFloat64s(append([]float64(nil), v...))
	default:
		out = Empty(b.dtype)
	}
	if b.shape != nil {
		out.shape = append([]int(nil), b.shape...)
	}
	return out
}

// Int64s returns the flat data converted to a new []int64.
func (b *Buffer) Int64s() []int64 {
	n := b.FlatLen()
	out := make([]int64, n)
	for i := range n {
		out[i] = b.Int(i)
	}
	return out
}

// Float64s returns the flat data converted to a new []float64.
func (b *Buffer) Float64s() []float64 {
	n := b.FlatLen()
	out := make([]float64, n)
	for i := range n {
		out[i] = b.Float(i)
	}
	return out
}

// FromFloats converts float64 values into a new buffer of the given type.
// Integer targets round toward zero; bool targets test for nonzero.
func FromFloats(dtype DType, values []float64) *Buffer {
	switch dtype {
	case Bool:
		out := make([]bool, len(values))
		for i, x := range values {
			out[i] = x != 0
		}
		return FromBools(out)
	case Int8:
		out := make([]int8, len(values))
		for i, x := range values {
			out[i] = int8(x)
		}
		return FromInt8s(out)
	case Uint8:
		out := make([]uint8, len(values))
		for i, x := range values {
			out[i] = uint8(x)
		}
		return FromUint8s(out)
	case Int32:
		out := make([]int32, len(values))
		for i, x := range values {
			out[i] = int32(x)
		}
		return FromInt32s(out)
	case Int64:
		out := make([]int64, len(values))
		for i, x := range values {
			if math.IsNaN(x) {
				continue
			}
			out[i] = int64(x)
		}
		return FromInt64s(out)
	default:
		return FromFloat64s(values)
	}
}

// Equal reports whether two buffers hold the same dtype, shape and values.
// NaN compares equal to NaN.
func Equal(a, b *Buffer) bool {
	if a.dtype != b.dtype || a.FlatLen() != b.FlatLen() || a.NDim() != b.NDim() {
		return false
	}
	as, bs := a.Shape(), b.Shape()
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	for i := range a.FlatLen() {
		x, y := a.Float(i), b.Float(i)
		if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
			return false
		}
	}
	return true
}

// String renders a short debug form such as "int64[1 2 3]".
func (b *Buffer) String() string {
	return fmt.Sprintf("%s%v", b.dtype, b.data)
}
