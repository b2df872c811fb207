package layout

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Regular holds fixed-size sublists: element i is content[i*size : (i+1)*size].
type Regular struct {
	content Node
	size    int
	length  int
	params  Parameters
}

// NewRegular validates that content holds exactly length*size elements.
func NewRegular(content Node, size, length int, params Parameters) (*Regular, error) {
	const op = "Regular"
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	if size < 0 || length < 0 {
		return nil, errs.Structural(op, fmt.Sprintf("negative size %d or length %d", size, length))
	}
	if content.Length() != size*length {
		return nil, errs.Structural(op,
			fmt.Sprintf("content length %d != length %d * size %d", content.Length(), length, size))
	}
	return &Regular{content: content, size: size, length: length, params: params}, nil
}

// Content returns the child node.
func (r *Regular) Content() Node { return r.content }

// Size returns the fixed sublist size.
func (r *Regular) Size() int { return r.size }

// Kind implements Node.
func (r *Regular) Kind() Kind { return KindRegular }

// Length implements Node.
func (r *Regular) Length() int { return r.length }

// Parameters implements Node.
func (r *Regular) Parameters() Parameters { return r.params }

func (r *Regular) sealed() {}

// ListOffset holds variable-size sublists delimited by monotonic offsets:
// element i is content[offsets[i] : offsets[i+1]].
type ListOffset struct {
	offsets *buffer.Buffer
	content Node
	params  Parameters
}

// NewListOffset validates that offsets are non-decreasing, start at or
// above zero and end within content.
func NewListOffset(offsets *buffer.Buffer, content Node, params Parameters) (*ListOffset, error) {
	const op = "ListOffset"
	if err := requireIndex(op, "offsets", offsets); err != nil {
		return nil, err
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	if offsets.Len() < 1 {
		return nil, errs.Structural(op, "offsets must have at least one element")
	}
	if offsets.Int(0) < 0 {
		return nil, errs.Structural(op, fmt.Sprintf("offsets[0] = %d is negative", offsets.Int(0)))
	}
	for i := 1; i < offsets.Len(); i++ {
		if offsets.Int(i) < offsets.Int(i-1) {
			return nil, errs.Structural(op, fmt.Sprintf("offsets decrease at %d", i))
		}
	}
	if last := offsets.Int(offsets.Len() - 1); last > int64(content.Length()) {
		return nil, errs.Structural(op,
			fmt.Sprintf("last offset %d exceeds content length %d", last, content.Length()))
	}
	return &ListOffset{offsets: offsets, content: content, params: params}, nil
}

// Offsets returns the offsets buffer (length+1 entries).
func (l *ListOffset) Offsets() *buffer.Buffer { return l.offsets }

// Content returns the child node.
func (l *ListOffset) Content() Node { return l.content }

// Kind implements Node.
func (l *ListOffset) Kind() Kind { return KindListOffset }

// Length implements Node.
func (l *ListOffset) Length() int { return l.offsets.Len() - 1 }

// Parameters implements Node.
func (l *ListOffset) Parameters() Parameters { return l.params }

func (l *ListOffset) sealed() {}

// List holds variable-size sublists with explicit start/stop pairs.
// Sublists may overlap or appear out of order.
type List struct {
	starts  *buffer.Buffer
	stops   *buffer.Buffer
	content Node
	params  Parameters
}

// NewList validates every non-empty (start, stop) pair against content.
func NewList(starts, stops *buffer.Buffer, content Node, params Parameters) (*List, error) {
	const op = "List"
	if err := requireIndex(op, "starts", starts); err != nil {
		return nil, err
	}
	if err := requireIndex(op, "stops", stops); err != nil {
		return nil, err
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	if stops.Len() < starts.Len() {
		return nil, errs.Structural(op,
			fmt.Sprintf("stops length %d < starts length %d", stops.Len(), starts.Len()))
	}
	n := int64(content.Length())
	for i := range starts.Len() {
		start, stop := starts.Int(i), stops.Int(i)
		if stop < start {
			return nil, errs.Structural(op, fmt.Sprintf("stop %d < start %d at %d", stop, start, i))
		}
		if start != stop && (start < 0 || stop > n) {
			return nil, errs.Structural(op,
				fmt.Sprintf("range [%d, %d) at %d outside content length %d", start, stop, i, n))
		}
	}
	return &List{starts: starts, stops: stops, content: content, params: params}, nil
}

// Starts returns the starts buffer.
func (l *List) Starts() *buffer.Buffer { return l.starts }

// Stops returns the stops buffer.
func (l *List) Stops() *buffer.Buffer { return l.stops }

// Content returns the child node.
func (l *List) Content() Node { return l.content }

// Kind implements Node.
func (l *List) Kind() Kind { return KindList }

// Length implements Node.
func (l *List) Length() int { return l.starts.Len() }

// Parameters implements Node.
func (l *List) Parameters() Parameters { return l.params }

func (l *List) sealed() {}

// StartsStops returns per-element [start, stop) ranges into the content
// of any list variant.
func StartsStops(n Node) (starts, stops []int64, content Node, ok bool) {
	switch v := n.(type) {
	case *Regular:
		starts = make([]int64, v.length)
		stops = make([]int64, v.length)
		for i := range v.length {
			starts[i] = int64(i * v.size)
			stops[i] = int64((i + 1) * v.size)
		}
		return starts, stops, v.content, true
	case *ListOffset:
		offsets := v.offsets.Int64s()
		return offsets[:len(offsets)-1], offsets[1:], v.content, true
	case *List:
		return v.starts.Int64s(), v.stops.Int64s()[:v.starts.Len()], v.content, true
	default:
		return nil, nil, nil, false
	}
}

// Compact rewrites any list variant as a ListOffset whose offsets start at
// zero and whose content holds exactly the referenced elements in order.
// A ListOffset that already satisfies this is returned unchanged.
func Compact(n Node) (*ListOffset, error) {
	if lo, ok := n.(*ListOffset); ok && lo.offsets.Int(0) == 0 &&
		lo.offsets.Int(lo.offsets.Len()-1) == int64(lo.content.Length()) {
		return lo, nil
	}
	if r, ok := n.(*Regular); ok {
		offsets := make([]int64, r.length+1)
		for i := range offsets {
			offsets[i] = int64(i * r.size)
		}
		return &ListOffset{offsets: buffer.FromInt64s(offsets), content: r.content, params: r.params}, nil
	}
	starts, stops, content, ok := StartsStops(n)
	if !ok {
		return nil, errs.Shape("Compact", n.Kind().String()+" is not a list")
	}
	offsets := make([]int64, len(starts)+1)
	var total int64
	for i := range starts {
		total += stops[i] - starts[i]
		offsets[i+1] = total
	}
	carry := make([]int64, 0, total)
	for i := range starts {
		for j := starts[i]; j < stops[i]; j++ {
			carry = append(carry, j)
		}
	}
	next, err := Carry(content, carry)
	if err != nil {
		return nil, err
	}
	return &ListOffset{offsets: buffer.FromInt64s(offsets), content: next, params: n.Parameters()}, nil
}
