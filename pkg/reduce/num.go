package reduce

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

// Num returns the number of elements at an axis. Axis 0 gives the outer
// length as a scalar; deeper axes give the length of every sublist at that
// level, nested like the input.
func Num(n layout.Node, axis int) (Result, error) {
	resolved, ok := layout.ResolveAxis(axis, layout.Depth(n))
	if !ok {
		return Result{}, errs.Depth("num", fmt.Sprintf("axis %d exceeds the nesting depth of %s", axis, layout.TypeOf(n)))
	}
	if resolved == 0 {
		return Result{Value: int64(n.Length())}, nil
	}
	out, err := num(n, 0, resolved)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: out}, nil
}

func num(n layout.Node, lvl, target int) (layout.Node, error) {
	n = layout.Project(n)
	if v, ok := n.(*layout.Numeric); ok && v.Data().NDim() > 1 {
		n = v.ToRegular()
	}
	switch v := n.(type) {
	case *layout.Record:
		contents := make([]layout.Node, v.NumFields())
		for f, c := range v.Contents() {
			out, err := num(c, lvl, target)
			if err != nil {
				return nil, withPath(err, v.Fields()[f])
			}
			contents[f] = out
		}
		return layout.NewRecord(contents, names(v), v.Length(), nil)
	case *layout.Union:
		contents := make([]layout.Node, v.NumContents())
		for t := range contents {
			out, err := num(v.Alternative(t), lvl, target)
			if err != nil {
				return nil, err
			}
			contents[t] = out
		}
		return layout.NewUnion(v.Tags(), v.Index(), contents, nil)
	}

	if layout.IsOption(n) {
		idx, content, _ := layout.OptionIndex(n)
		valid, outIndex := compress(idx)
		carried, err := layout.Carry(content, valid)
		if err != nil {
			return nil, err
		}
		out, err := num(carried, lvl, target)
		if err != nil {
			return nil, err
		}
		return layout.NewIndexedOption(buffer.FromInt64s(outIndex), out, nil)
	}

	starts, stops, _, ok := layout.StartsStops(n)
	if !ok || layout.IsString(n) {
		return nil, errs.Depth("num", "axis is deeper than "+n.Form().Type())
	}
	if lvl+1 == target {
		lengths := make([]int64, len(starts))
		for i := range starts {
			lengths[i] = stops[i] - starts[i]
		}
		return layout.NewNumeric(buffer.FromInt64s(lengths), nil)
	}
	list, err := layout.Compact(n)
	if err != nil {
		return nil, err
	}
	out, err := num(list.Content(), lvl+1, target)
	if err != nil {
		return nil, err
	}
	return layout.NewListOffset(list.Offsets(), out, nil)
}
