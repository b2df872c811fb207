// Package reduce collapses one nesting level of a layout tree into
// aggregate values.
//
// Elements that share a path down to the reduced level form a group and
// are folded left to right from the reducer's identity. Missing values are
// skipped. A group that receives no values yields the identity, or a
// missing value when MaskIdentity is set. Records reduce field by field.
package reduce

import (
	"errors"
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

const op = "reduce"

// Options control a reduction.
type Options struct {
	// Axis is the nesting level to reduce, 0 for the outermost and negative
	// values counting from the innermost. Nil reduces every value.
	Axis *int

	// KeepDims wraps each reduced group in a length-1 Regular level so the
	// result lines up with the input again.
	KeepDims bool

	// MaskIdentity marks groups that received no values as missing.
	MaskIdentity bool

	// FlattenRecords lets a reduction with a nil Axis fold the values of
	// every record field together.
	FlattenRecords bool
}

// Axis returns a pointer to axis for use in Options.
func Axis(axis int) *int { return &axis }

// Result holds either a node or, when the reduction collapsed everything,
// a single value.
type Result struct {
	Node layout.Node

	// Value is int64, float64, bool, a record map or nil for missing. It is
	// only meaningful when Node is nil.
	Value any
}

// IsScalar reports whether the reduction produced a single value.
func (r Result) IsScalar() bool { return r.Node == nil }

type reduction struct {
	r    Reducer
	opts Options
}

// Reduce applies r to n according to opts.
func Reduce(n layout.Node, r Reducer, opts Options) (Result, error) {
	red := reduction{r: r, opts: opts}
	if opts.Axis == nil {
		return red.all(n)
	}

	axis := *opts.Axis
	lo, hi := layout.MinMaxDepth(n)
	if axis > hi || (axis < 0 && -axis > lo+1) {
		return Result{}, errs.Depth(op,
			fmt.Sprintf("axis %d exceeds the nesting depth of %s", axis, layout.TypeOf(n)))
	}

	out, here, err := red.dispatch(n, 0, axis, make([]int64, n.Length()), 1)
	if err != nil {
		return Result{}, err
	}
	if !here || opts.KeepDims {
		return Result{Node: out}, nil
	}
	if layout.IsList(out) && !layout.IsString(out) {
		starts, stops, content, _ := layout.StartsStops(out)
		inner, err := layout.Range(content, int(starts[0]), int(stops[0]))
		if err != nil {
			return Result{}, err
		}
		return Result{Node: inner}, nil
	}
	return Result{Value: layout.Value(out, 0)}, nil
}

// target resolves axis to an absolute level for a node whose elements sit
// at level lvl.
func target(n layout.Node, lvl, axis int) int {
	if axis >= 0 {
		return axis
	}
	return lvl + layout.Depth(n) + 1 + axis
}

// dispatch reduces n, whose elements sit at level lvl and belong to the
// groups in parents. here reports whether the fold happened at this level,
// in which case the result has outlength elements; otherwise it has
// n.Length() elements with one level removed further down.
func (red reduction) dispatch(n layout.Node, lvl, axis int, parents []int64, outlength int) (layout.Node, bool, error) {
	n = layout.Project(n)
	if rec, ok := n.(*layout.Record); ok {
		return red.dispatchRecord(rec, lvl, axis, parents, outlength)
	}
	t := target(n, lvl, axis)
	switch {
	case t < lvl:
		return nil, false, errs.Depth(op, fmt.Sprintf("axis %d is above %s", axis, n.Form().Type()))
	case t == lvl:
		out, err := red.groups(n, parents, outlength)
		return out, true, err
	default:
		out, err := red.inside(n, lvl, axis)
		return out, false, err
	}
}

func (red reduction) dispatchRecord(rec *layout.Record, lvl, axis int, parents []int64, outlength int) (layout.Node, bool, error) {
	fields := rec.Fields()
	contents := make([]layout.Node, len(fields))
	var here []bool
	for f, c := range rec.Contents() {
		out, h, err := red.dispatch(c, lvl, axis, parents, outlength)
		if err != nil {
			return nil, false, withPath(err, fields[f])
		}
		contents[f] = out
		here = append(here, h)
	}
	reduced := len(here) > 0 && here[0]
	for _, h := range here {
		if h != reduced {
			return nil, false, errs.Depth(op, fmt.Sprintf("axis %d reaches different levels in the fields of %s",
				axis, rec.Form().Type()))
		}
	}
	length := rec.Length()
	if reduced || len(here) == 0 && target(rec, lvl, axis) == lvl {
		length, reduced = outlength, true
	}
	out, err := layout.NewRecord(contents, names(rec), length, rec.Parameters())
	return out, reduced, err
}

func names(rec *layout.Record) []string {
	if rec.IsTuple() {
		return nil
	}
	return rec.Fields()
}

func withPath(err error, segment string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.WithPath(segment)
	}
	return err
}

// inside descends toward the target level, keeping n's length.
func (red reduction) inside(n layout.Node, lvl, axis int) (layout.Node, error) {
	n = layout.Project(n)
	if num, ok := n.(*layout.Numeric); ok && num.Data().NDim() > 1 {
		n = num.ToRegular()
	}
	switch v := n.(type) {
	case *layout.Record:
		contents := make([]layout.Node, v.NumFields())
		for f, c := range v.Contents() {
			out, err := red.inside(c, lvl, axis)
			if err != nil {
				return nil, withPath(err, v.Fields()[f])
			}
			contents[f] = out
		}
		return layout.NewRecord(contents, names(v), v.Length(), v.Parameters())
	case *layout.Union:
		contents := make([]layout.Node, v.NumContents())
		for t := range contents {
			out, err := red.inside(v.Alternative(t), lvl, axis)
			if err != nil {
				return nil, err
			}
			contents[t] = out
		}
		return layout.NewUnion(v.Tags(), v.Index(), contents, v.Parameters())
	}

	if target(n, lvl, axis) <= lvl {
		return nil, errs.Depth(op, fmt.Sprintf("axis %d reaches different levels in %s", axis, n.Form().Type()))
	}

	if layout.IsOption(n) {
		idx, content, _ := layout.OptionIndex(n)
		valid, outIndex := compress(idx)
		carried, err := layout.Carry(content, valid)
		if err != nil {
			return nil, err
		}
		out, err := red.inside(carried, lvl, axis)
		if err != nil {
			return nil, err
		}
		return layout.NewIndexedOption(buffer.FromInt64s(outIndex), out, n.Parameters())
	}

	if !layout.IsList(n) || layout.IsString(n) {
		return nil, errs.Depth(op, fmt.Sprintf("axis %d is deeper than %s", axis, n.Form().Type()))
	}

	list, err := layout.Compact(n)
	if err != nil {
		return nil, err
	}
	offsets := list.Offsets().Int64s()
	parents := make([]int64, list.Content().Length())
	for i := range list.Length() {
		for j := offsets[i]; j < offsets[i+1]; j++ {
			parents[j] = int64(i)
		}
	}
	out, here, err := red.dispatch(list.Content(), lvl+1, axis, parents, list.Length())
	if err != nil {
		return nil, err
	}
	if !here {
		return layout.NewListOffset(list.Offsets(), out, n.Parameters())
	}
	if red.opts.KeepDims {
		return layout.NewRegular(out, 1, out.Length(), nil)
	}
	return out, nil
}

// compress returns the content positions of present elements and an option
// index pointing at their rank, -1 where missing.
func compress(idx []int64) (valid, outIndex []int64) {
	outIndex = make([]int64, len(idx))
	for i, j := range idx {
		outIndex[i] = -1
		if j >= 0 {
			outIndex[i] = int64(len(valid))
			valid = append(valid, j)
		}
	}
	return valid, outIndex
}

// groups folds the elements of n into outlength groups.
func (red reduction) groups(n layout.Node, parents []int64, outlength int) (layout.Node, error) {
	n = layout.Project(n)
	if num, ok := n.(*layout.Numeric); ok && num.Data().NDim() > 1 {
		n = num.ToRegular()
	}

	if layout.IsString(n) {
		return nil, errs.Invalid(op, red.r.Name+" cannot reduce strings")
	}

	switch v := n.(type) {
	case *layout.Numeric:
		return red.foldNumeric(v.Data(), parents, outlength)
	case *layout.Record:
		contents := make([]layout.Node, v.NumFields())
		for f, c := range v.Contents() {
			out, err := red.groups(c, parents, outlength)
			if err != nil {
				return nil, withPath(err, v.Fields()[f])
			}
			contents[f] = out
		}
		return layout.NewRecord(contents, names(v), outlength, v.Parameters())
	case *layout.Union:
		merged, err := mergeUnion(v)
		if err != nil {
			return nil, err
		}
		return red.groups(merged, parents, outlength)
	}

	if layout.IsOption(n) {
		idx, content, _ := layout.OptionIndex(n)
		var valid, kept []int64
		for i, j := range idx {
			if j >= 0 {
				valid = append(valid, j)
				kept = append(kept, parents[i])
			}
		}
		carried, err := layout.Carry(content, valid)
		if err != nil {
			return nil, err
		}
		return red.groups(carried, kept, outlength)
	}

	starts, stops, content, ok := layout.StartsStops(n)
	if !ok {
		return nil, errs.Invalid(op, "cannot reduce "+n.Kind().String())
	}
	return red.columns(starts, stops, content, parents, outlength)
}

// columns folds sublists element-wise: element j of every sublist in group
// g lands in slot j of output sublist g.
func (red reduction) columns(starts, stops []int64, content layout.Node, parents []int64, outlength int) (layout.Node, error) {
	widths := make([]int64, outlength)
	for i := range starts {
		widths[parents[i]] = max(widths[parents[i]], stops[i]-starts[i])
	}
	offsets := make([]int64, outlength+1)
	for g, w := range widths {
		offsets[g+1] = offsets[g] + w
	}

	var index, next []int64
	for i := range starts {
		for j := starts[i]; j < stops[i]; j++ {
			index = append(index, j)
			next = append(next, offsets[parents[i]]+j-starts[i])
		}
	}
	carried, err := layout.Carry(content, index)
	if err != nil {
		return nil, err
	}
	out, err := red.groups(carried, next, int(offsets[outlength]))
	if err != nil {
		return nil, err
	}
	return layout.NewListOffset(buffer.FromInt64s(offsets), out, nil)
}

func (red reduction) foldNumeric(data *buffer.Buffer, parents []int64, outlength int) (layout.Node, error) {
	acc, counts := red.r.fold(data, parents, outlength)
	leaf, err := layout.NewNumeric(acc, nil)
	if err != nil {
		return nil, err
	}
	if !red.opts.MaskIdentity {
		return leaf, nil
	}
	index := make([]int64, outlength)
	for g, c := range counts {
		index[g] = int64(g)
		if c == 0 {
			index[g] = -1
		}
	}
	return layout.NewIndexedOption(buffer.FromInt64s(index), leaf, nil)
}

// mergeUnion turns a union of one-dimensional Numeric alternatives into a
// single Numeric.
func mergeUnion(u *layout.Union) (layout.Node, error) {
	dtype := buffer.Int64
	for t := range u.NumContents() {
		num, ok := u.Alternative(t).(*layout.Numeric)
		if !ok || num.Data().NDim() > 1 || layout.IsString(num) {
			return nil, errs.New(errs.KindRecordReduction, op,
				"cannot reduce across union alternatives "+u.Form().Type())
		}
		if num.DType() == buffer.Float64 {
			dtype = buffer.Float64
		}
	}
	tags, index := u.Tags(), u.Index()
	data := func(i int) (*buffer.Buffer, int) {
		num, _ := u.Alternative(int(tags.Int(i))).(*layout.Numeric)
		return num.Data(), int(index.Int(i))
	}
	if dtype == buffer.Float64 {
		values := make([]float64, u.Length())
		for i := range values {
			b, j := data(i)
			values[i] = b.Float(j)
		}
		return layout.NewNumeric(buffer.FromFloat64s(values), nil)
	}
	values := make([]int64, u.Length())
	for i := range values {
		b, j := data(i)
		values[i] = b.Int(j)
	}
	return layout.NewNumeric(buffer.FromInt64s(values), nil)
}
