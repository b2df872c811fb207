package layout

import (
	"github.com/yaklabco/ragged/pkg/buffer"
)

// Value materializes element i of n as a plain Go value: nil for missing,
// bool, int64, float64, string, []byte for bytestrings, []any for lists and
// tuples, map[string]any for named records.
func Value(n Node, i int) any {
	switch v := n.(type) {
	case *Numeric:
		if v.data.NDim() > 1 {
			return Value(v.ToRegular(), i)
		}
		return scalar(v.data, i)
	case *Regular, *ListOffset, *List:
		starts, stops, content, _ := StartsStops(n)
		return listValue(n, content, starts[i], stops[i])
	case *Indexed:
		return Value(v.content, int(v.index.Int(i)))
	case *IndexedOption:
		j := v.index.Int(i)
		if j < 0 {
			return nil
		}
		return Value(v.content, int(j))
	case *ByteMasked:
		if !v.IsValid(i) {
			return nil
		}
		return Value(v.content, i)
	case *BitMasked:
		if !v.IsValid(i) {
			return nil
		}
		return Value(v.content, i)
	case *Unmasked:
		return Value(v.content, i)
	case *Record:
		if v.fields == nil {
			out := make([]any, len(v.contents))
			for k, c := range v.contents {
				out[k] = Value(c, i)
			}
			return out
		}
		out := make(map[string]any, len(v.contents))
		for k, c := range v.contents {
			out[v.fields[k]] = Value(c, i)
		}
		return out
	case *Union:
		return Value(v.contents[v.tags.Int(i)], int(v.index.Int(i)))
	default:
		return nil
	}
}

func scalar(b *buffer.Buffer, i int) any {
	switch b.DType() {
	case buffer.Bool:
		return b.IsTrue(i)
	case buffer.Float64:
		return b.Float(i)
	default:
		return b.Int(i)
	}
}

func listValue(list, content Node, start, stop int64) any {
	switch list.Parameters().Get(ParamArray) {
	case ArrayString, ArrayBytestring:
		raw := make([]byte, 0, stop-start)
		for j := start; j < stop; j++ {
			raw = append(raw, byte(Value(content, int(j)).(int64)))
		}
		if list.Parameters().Get(ParamArray) == ArrayBytestring {
			return raw
		}
		return string(raw)
	}
	out := make([]any, 0, stop-start)
	for j := start; j < stop; j++ {
		out = append(out, Value(content, int(j)))
	}
	return out
}

// ToList materializes every element of n.
func ToList(n Node) []any {
	out := make([]any, n.Length())
	for i := range out {
		out[i] = Value(n, i)
	}
	return out
}

// StringNode builds a string list node from Go strings.
func StringNode(values []string) *ListOffset {
	offsets := make([]int64, len(values)+1)
	var chars []uint8
	for i, s := range values {
		chars = append(chars, s...)
		offsets[i+1] = int64(len(chars))
	}
	content := &Numeric{data: buffer.FromUint8s(chars), params: Parameters{ParamArray: ArrayChar}}
	return &ListOffset{offsets: buffer.FromInt64s(offsets), content: content, params: Parameters{ParamArray: ArrayString}}
}
