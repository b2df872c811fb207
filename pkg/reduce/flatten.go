package reduce

import (
	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

// all folds every present leaf value of n into one value.
func (red reduction) all(n layout.Node) (Result, error) {
	leaves, dtype, err := red.flatten(n, buffer.Bool)
	if err != nil {
		return Result{}, err
	}
	data := concat(leaves, dtype)
	out, counts := red.r.fold(data, make([]int64, data.FlatLen()), 1)
	if red.opts.MaskIdentity && counts[0] == 0 {
		return Result{}, nil
	}
	switch out.DType() {
	case buffer.Bool:
		return Result{Value: out.IsTrue(0)}, nil
	case buffer.Float64:
		return Result{Value: out.Float(0)}, nil
	default:
		return Result{Value: out.Int(0)}, nil
	}
}

// concat joins leaf buffers into one flat buffer of dtype.
func concat(leaves []*buffer.Buffer, dtype buffer.DType) *buffer.Buffer {
	switch dtype {
	case buffer.Float64:
		var out []float64
		for _, b := range leaves {
			out = append(out, b.Float64s()...)
		}
		return buffer.FromFloat64s(out)
	case buffer.Bool:
		var out []bool
		for _, b := range leaves {
			for i := range b.FlatLen() {
				out = append(out, b.IsTrue(i))
			}
		}
		return buffer.FromBools(out)
	default:
		var out []int64
		for _, b := range leaves {
			out = append(out, b.Int64s()...)
		}
		return buffer.FromInt64s(out)
	}
}

// flatten collects the buffers of the present leaf values reachable from n.
// dtype widens from bool through int64 to float64 as leaves are seen.
func (red reduction) flatten(n layout.Node, dtype buffer.DType) ([]*buffer.Buffer, buffer.DType, error) {
	if layout.IsString(n) {
		return nil, dtype, errs.Invalid(op, red.r.Name+" cannot reduce strings")
	}
	switch v := n.(type) {
	case *layout.Numeric:
		return []*buffer.Buffer{v.Data()}, widen(dtype, v.DType()), nil
	case *layout.Record:
		if !red.opts.FlattenRecords {
			return nil, dtype, errs.New(errs.KindRecordReduction, op,
				"cannot reduce all values of "+v.Form().Type()+" without flattening records")
		}
		var out []*buffer.Buffer
		for f, c := range v.Contents() {
			values, d, err := red.flatten(c, dtype)
			if err != nil {
				return nil, dtype, withPath(err, v.Fields()[f])
			}
			out, dtype = append(out, values...), d
		}
		return out, dtype, nil
	case *layout.Union:
		var out []*buffer.Buffer
		for t := range v.NumContents() {
			_, index := v.Project(t)
			carried, err := layout.Carry(v.Alternative(t), index)
			if err != nil {
				return nil, dtype, err
			}
			values, d, err := red.flatten(carried, dtype)
			if err != nil {
				return nil, dtype, err
			}
			out, dtype = append(out, values...), d
		}
		return out, dtype, nil
	case *layout.Indexed:
		return red.flatten(layout.Project(v), dtype)
	}

	if layout.IsOption(n) {
		idx, content, _ := layout.OptionIndex(n)
		valid, _ := compress(idx)
		carried, err := layout.Carry(content, valid)
		if err != nil {
			return nil, dtype, err
		}
		return red.flatten(carried, dtype)
	}

	list, err := layout.Compact(n)
	if err != nil {
		return nil, dtype, err
	}
	offsets := list.Offsets()
	inner, err := layout.Range(list.Content(), int(offsets.Int(0)), int(offsets.Int(offsets.Len()-1)))
	if err != nil {
		return nil, dtype, err
	}
	return red.flatten(inner, dtype)
}

func widen(a, b buffer.DType) buffer.DType {
	switch {
	case a == buffer.Float64 || b == buffer.Float64:
		return buffer.Float64
	case a == buffer.Bool && b == buffer.Bool:
		return buffer.Bool
	default:
		return buffer.Int64
	}
}
