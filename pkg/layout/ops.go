package layout

import (
	"errors"
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Carry returns a node of len(index) elements whose element i is element
// index[i] of n. Buffers are gathered; child nodes below list levels are
// shared rather than copied where the variant allows it.
func Carry(n Node, index []int64) (Node, error) {
	length := int64(n.Length())
	for i, j := range index {
		if j < 0 || j >= length {
			return nil, errs.Invalid("Carry",
				fmt.Sprintf("index[%d] = %d outside [0, %d)", i, j, length))
		}
	}
	return carry(n, index), nil
}

func carry(n Node, index []int64) Node {
	switch v := n.(type) {
	case *Numeric:
		if v.data.NDim() > 1 {
			return carry(v.ToRegular(), index)
		}
		return &Numeric{data: v.data.Take(index), params: v.params}
	case *Regular:
		next := make([]int64, 0, len(index)*v.size)
		for _, j := range index {
			for k := range v.size {
				next = append(next, j*int64(v.size)+int64(k))
			}
		}
		return &Regular{content: carry(v.content, next), size: v.size, length: len(index), params: v.params}
	case *ListOffset:
		offsets := v.offsets.Int64s()
		starts := make([]int64, len(index))
		stops := make([]int64, len(index))
		for i, j := range index {
			starts[i], stops[i] = offsets[j], offsets[j+1]
		}
		return &List{starts: buffer.FromInt64s(starts), stops: buffer.FromInt64s(stops), content: v.content, params: v.params}
	case *List:
		return &List{starts: v.starts.Take(index), stops: v.stops.Take(index), content: v.content, params: v.params}
	case *Indexed:
		return &Indexed{index: v.index.Take(index), content: v.content, params: v.params}
	case *IndexedOption:
		return &IndexedOption{index: v.index.Take(index), content: v.content, params: v.params}
	case *ByteMasked, *BitMasked:
		opt, content, _ := OptionIndex(v)
		return &IndexedOption{index: buffer.FromInt64s(opt).Take(index), content: content, params: v.Parameters()}
	case *Unmasked:
		return &Unmasked{content: carry(v.content, index), params: v.params}
	case *Record:
		contents := make([]Node, len(v.contents))
		for i, c := range v.contents {
			contents[i] = carry(c, index)
		}
		return &Record{contents: contents, fields: v.fields, length: len(index), params: v.params}
	case *Union:
		return &Union{tags: v.tags.Take(index), index: v.index.Take(index), contents: v.contents, params: v.params}
	default:
		panic(fmt.Sprintf("layout: unhandled node %T", n))
	}
}

// Range returns elements [start, stop) of n.
func Range(n Node, start, stop int) (Node, error) {
	if start < 0 || stop > n.Length() || start > stop {
		return nil, errs.Invalid("Range", fmt.Sprintf("[%d, %d) outside length %d", start, stop, n.Length()))
	}
	index := make([]int64, 0, stop-start)
	for i := start; i < stop; i++ {
		index = append(index, int64(i))
	}
	return carry(n, index), nil
}

// Project resolves an Indexed node into its content so the result holds
// elements directly. Other variants are returned unchanged.
func Project(n Node) Node {
	if x, ok := n.(*Indexed); ok {
		return carry(x.content, x.index.Int64s())
	}
	return n
}

// WithParameters returns a shallow copy of n carrying params.
func WithParameters(n Node, params Parameters) Node {
	switch v := n.(type) {
	case *Numeric:
		c := *v
		c.params = params
		return &c
	case *Regular:
		c := *v
		c.params = params
		return &c
	case *ListOffset:
		c := *v
		c.params = params
		return &c
	case *List:
		c := *v
		c.params = params
		return &c
	case *Indexed:
		c := *v
		c.params = params
		return &c
	case *IndexedOption:
		c := *v
		c.params = params
		return &c
	case *ByteMasked:
		c := *v
		c.params = params
		return &c
	case *BitMasked:
		c := *v
		c.params = params
		return &c
	case *Unmasked:
		c := *v
		c.params = params
		return &c
	case *Record:
		c := *v
		c.params = params
		return &c
	case *Union:
		c := *v
		c.params = params
		return &c
	default:
		return n
	}
}

// Validate re-checks the construction invariants of every node in the tree.
func Validate(n Node) error {
	return Walk(n, func(node Node, path []string) error {
		var err error
		switch v := node.(type) {
		case *Numeric:
			_, err = NewNumeric(v.data, v.params)
		case *Regular:
			_, err = NewRegular(v.content, v.size, v.length, v.params)
		case *ListOffset:
			_, err = NewListOffset(v.offsets, v.content, v.params)
		case *List:
			_, err = NewList(v.starts, v.stops, v.content, v.params)
		case *Indexed:
			_, err = NewIndexed(v.index, v.content, v.params)
		case *IndexedOption:
			_, err = NewIndexedOption(v.index, v.content, v.params)
		case *ByteMasked:
			_, err = NewByteMasked(v.mask, v.content, v.validWhen, v.params)
		case *BitMasked:
			_, err = NewBitMasked(v.mask, v.content, v.validWhen, v.length, v.lsbOrder, v.params)
		case *Unmasked:
			_, err = NewUnmasked(v.content, v.params)
		case *Record:
			_, err = NewRecord(v.contents, v.fields, v.length, v.params)
		case *Union:
			_, err = NewUnion(v.tags, v.index, v.contents, v.params)
		}
		var e *errs.Error
		if errors.As(err, &e) {
			for i := len(path) - 1; i >= 0; i-- {
				e = e.WithPath(path[i])
			}
			return e
		}
		return err
	})
}
