// Package broadcast aligns layout trees of different nesting depth and
// length so an elementwise kernel can run over their flat leaf buffers.
//
// Alignment proceeds level by level. Indexed views are projected, unions
// are split per alternative and reassembled with their tags, option levels
// are compressed to the positions where every operand is present and
// rewrapped as IndexedOption, records are aligned field by field, and list
// levels are aligned sublist by sublist with length-1 sublists repeating.
// Lower-depth operands are repeated once per sublist element at every list
// level they lack.
package broadcast

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

const op = "broadcast"

// Operand is one input to Broadcast: either a layout node or a scalar that
// repeats everywhere.
type Operand struct {
	node   layout.Node
	scalar *buffer.Buffer
}

// Of wraps a node.
func Of(n layout.Node) Operand { return Operand{node: n} }

// Float returns a floating-point scalar operand.
func Float(x float64) Operand { return Operand{scalar: buffer.FromFloat64s([]float64{x})} }

// Int returns an integer scalar operand.
func Int(x int64) Operand { return Operand{scalar: buffer.FromInt64s([]int64{x})} }

// Bool returns a boolean scalar operand.
func Bool(x bool) Operand { return Operand{scalar: buffer.FromBools([]bool{x})} }

// IsScalar reports whether the operand is a scalar.
func (o Operand) IsScalar() bool { return o.node == nil }

// Node returns the wrapped node, or nil for scalars.
func (o Operand) Node() layout.Node { return o.node }

// Broadcast aligns the operands and returns one node per operand. The
// results share a single nested shape: the same variants, offsets, option
// indices and union tags at every level, differing only in their leaves.
// Scalars come back as leaves filled with their value.
func Broadcast(operands ...Operand) ([]layout.Node, error) {
	if len(operands) == 0 {
		return nil, errs.Invalid(op, "no operands")
	}
	length := -1
	for _, o := range operands {
		if o.IsScalar() {
			continue
		}
		n := o.node.Length()
		switch {
		case length < 0 || length == 1:
			length = n
		case n != length && n != 1:
			return nil, errs.Shape(op, fmt.Sprintf("outer lengths %d and %d differ", length, n))
		}
	}
	if length < 0 {
		length = 1
	}
	ins := make([]Operand, len(operands))
	for i, o := range operands {
		ins[i] = o
		if !o.IsScalar() && o.node.Length() != length {
			carried, err := layout.Carry(o.node, make([]int64, length))
			if err != nil {
				return nil, err
			}
			ins[i] = Of(carried)
		}
	}
	return align(ins, length)
}

// align requires every node operand to have exactly length elements.
func align(ins []Operand, length int) ([]layout.Node, error) {
	for i, o := range ins {
		if o.IsScalar() {
			continue
		}
		switch v := o.node.(type) {
		case *layout.Indexed:
			ins[i] = Of(layout.Project(v))
		case *layout.Numeric:
			ins[i] = Of(v.ToRegular())
		}
	}

	if k := slices.IndexFunc(ins, isKind(layout.KindUnion)); k >= 0 {
		return alignUnion(ins, k)
	}
	if slices.ContainsFunc(ins, isOption) {
		return alignOption(ins, length)
	}
	if slices.ContainsFunc(ins, isKind(layout.KindRecord)) {
		return alignRecord(ins, length)
	}
	if slices.ContainsFunc(ins, isNestedList) {
		return alignList(ins, length)
	}
	return alignLeaves(ins, length), nil
}

func isKind(kind layout.Kind) func(Operand) bool {
	return func(o Operand) bool {
		return !o.IsScalar() && o.node.Kind() == kind
	}
}

func isOption(o Operand) bool {
	return !o.IsScalar() && layout.IsOption(o.node)
}

func isNestedList(o Operand) bool {
	return !o.IsScalar() && layout.IsList(o.node) && !layout.IsString(o.node)
}

func carryAll(ins []Operand, index []int64) ([]Operand, error) {
	out := make([]Operand, len(ins))
	for i, o := range ins {
		if o.IsScalar() {
			out[i] = o
			continue
		}
		carried, err := layout.Carry(o.node, index)
		if err != nil {
			return nil, err
		}
		out[i] = Of(carried)
	}
	return out, nil
}

func alignUnion(ins []Operand, k int) ([]layout.Node, error) {
	union, _ := ins[k].node.(*layout.Union)
	tags := union.Tags()
	rank := make([]int64, union.Length())
	newTag := make([]int8, union.NumContents())
	counts := make([]int64, union.NumContents())
	for i := range rank {
		t := tags.Int(i)
		rank[i] = counts[t]
		counts[t]++
	}

	perAlt := make([][]layout.Node, 0, union.NumContents())
	for t := range union.NumContents() {
		positions, index := union.Project(t)
		if len(positions) == 0 {
			newTag[t] = -1
			continue
		}
		sub, err := carryAll(ins, positions)
		if err != nil {
			return nil, err
		}
		alt, err := layout.Carry(union.Alternative(t), index)
		if err != nil {
			return nil, err
		}
		sub[k] = Of(alt)
		out, err := align(sub, len(positions))
		if err != nil {
			return nil, err
		}
		newTag[t] = int8(len(perAlt))
		perAlt = append(perAlt, out)
	}

	outTags := make([]int8, union.Length())
	for i := range outTags {
		outTags[i] = newTag[tags.Int(i)]
	}
	tagBuf, rankBuf := buffer.FromInt8s(outTags), buffer.FromInt64s(rank)
	if len(perAlt) == 0 {
		return alignLeaves(ins, 0), nil
	}

	results := make([]layout.Node, len(ins))
	for j := range ins {
		contents := make([]layout.Node, len(perAlt))
		for a, out := range perAlt {
			contents[a] = out[j]
		}
		var params layout.Parameters
		if j == k {
			params = union.Parameters()
		}
		node, err := layout.NewUnion(tagBuf, rankBuf, contents, params)
		if err != nil {
			return nil, err
		}
		results[j] = node
	}
	return results, nil
}

func alignOption(ins []Operand, length int) ([]layout.Node, error) {
	present := make([]bool, length)
	for i := range present {
		present[i] = true
	}
	contents := make([]Operand, len(ins))
	indices := make([][]int64, len(ins))
	for j, o := range ins {
		if !isOption(o) {
			contents[j] = o
			continue
		}
		idx, content, _ := layout.OptionIndex(o.node)
		indices[j] = idx
		contents[j] = Of(content)
		for i, x := range idx {
			if x < 0 {
				present[i] = false
			}
		}
	}

	var positions []int64
	outIndex := make([]int64, length)
	for i, ok := range present {
		outIndex[i] = -1
		if ok {
			outIndex[i] = int64(len(positions))
			positions = append(positions, int64(i))
		}
	}

	sub := make([]Operand, len(ins))
	for j, o := range contents {
		if o.IsScalar() {
			sub[j] = o
			continue
		}
		index := positions
		if indices[j] != nil {
			index = make([]int64, len(positions))
			for p, i := range positions {
				index[p] = indices[j][i]
			}
		}
		carried, err := layout.Carry(o.node, index)
		if err != nil {
			return nil, err
		}
		sub[j] = Of(carried)
	}

	out, err := align(sub, len(positions))
	if err != nil {
		return nil, err
	}
	idxBuf := buffer.FromInt64s(outIndex)
	results := make([]layout.Node, len(out))
	for j, n := range out {
		var params layout.Parameters
		if indices[j] != nil {
			params = ins[j].node.Parameters()
		}
		results[j], err = layout.NewIndexedOption(idxBuf, n, params)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func alignRecord(ins []Operand, length int) ([]layout.Node, error) {
	var first *layout.Record
	for _, o := range ins {
		if r, ok := o.node.(*layout.Record); ok {
			if first == nil {
				first = r
				continue
			}
			if err := sameFields(first, r); err != nil {
				return nil, err
			}
		}
	}

	fields := first.Fields()
	perField := make([][]layout.Node, len(fields))
	for f, name := range fields {
		sub := make([]Operand, len(ins))
		for j, o := range ins {
			if r, ok := o.node.(*layout.Record); ok {
				sub[j] = Of(r.Field(name))
			} else {
				sub[j] = o
			}
		}
		out, err := align(sub, length)
		if err != nil {
			return nil, withPath(err, name)
		}
		perField[f] = out
	}

	var names []string
	if !first.IsTuple() {
		names = fields
	}
	results := make([]layout.Node, len(ins))
	for j, o := range ins {
		contents := make([]layout.Node, len(fields))
		for f := range fields {
			contents[f] = perField[f][j]
		}
		var params layout.Parameters
		if !o.IsScalar() && o.node.Kind() == layout.KindRecord {
			params = o.node.Parameters()
		}
		node, err := layout.NewRecord(contents, names, length, params)
		if err != nil {
			return nil, err
		}
		results[j] = node
	}
	return results, nil
}

func withPath(err error, segment string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.WithPath(segment)
	}
	return err
}

func sameFields(a, b *layout.Record) error {
	if a.IsTuple() != b.IsTuple() || a.NumFields() != b.NumFields() {
		return errs.Shape(op, fmt.Sprintf("cannot broadcast records %v and %v", a.Fields(), b.Fields()))
	}
	for _, name := range a.Fields() {
		if b.FieldIndex(name) < 0 {
			return errs.Shape(op, fmt.Sprintf("cannot broadcast records %v and %v", a.Fields(), b.Fields()))
		}
	}
	return nil
}

func alignList(ins []Operand, length int) ([]layout.Node, error) {
	type listIn struct {
		starts, stops []int64
	}
	lists := make([]*listIn, len(ins))
	allRegular := true
	for j, o := range ins {
		if !isNestedList(o) {
			continue
		}
		starts, stops, _, _ := layout.StartsStops(o.node)
		lists[j] = &listIn{starts: starts, stops: stops}
		if o.node.Kind() != layout.KindRegular {
			allRegular = false
		}
	}

	counts := make([]int64, length)
	for i := range counts {
		counts[i] = -1
		for j, l := range lists {
			if l == nil {
				continue
			}
			n := l.stops[i] - l.starts[i]
			switch {
			case counts[i] < 0 || counts[i] == 1:
				counts[i] = n
			case n != counts[i] && n != 1:
				return nil, errs.Shape(op, fmt.Sprintf(
					"sublist lengths %d and %d differ at position %d (operand %d)", counts[i], n, i, j))
			}
		}
	}

	offsets := make([]int64, length+1)
	for i, n := range counts {
		offsets[i+1] = offsets[i] + n
	}
	total := offsets[length]

	sub := make([]Operand, len(ins))
	for j, o := range ins {
		if o.IsScalar() {
			sub[j] = o
			continue
		}
		index := make([]int64, 0, total)
		l := lists[j]
		for i, n := range counts {
			for k := range n {
				switch {
				case l == nil:
					index = append(index, int64(i))
				case l.stops[i]-l.starts[i] == 1:
					index = append(index, l.starts[i])
				default:
					index = append(index, l.starts[i]+k)
				}
			}
		}
		content := o.node
		if l != nil {
			content = layout.Content(o.node)
		}
		carried, err := layout.Carry(content, index)
		if err != nil {
			return nil, err
		}
		sub[j] = Of(carried)
	}

	out, err := align(sub, int(total))
	if err != nil {
		return nil, err
	}

	size, regular := regularSize(counts)
	regular = regular && allRegular && length > 0
	offBuf := buffer.FromInt64s(offsets)
	results := make([]layout.Node, len(out))
	for j, n := range out {
		var params layout.Parameters
		if lists[j] != nil {
			params = ins[j].node.Parameters()
		}
		if regular {
			results[j], err = layout.NewRegular(n, size, length, params)
		} else {
			results[j], err = layout.NewListOffset(offBuf, n, params)
		}
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func regularSize(counts []int64) (int, bool) {
	if len(counts) == 0 {
		return 0, false
	}
	for _, n := range counts[1:] {
		if n != counts[0] {
			return 0, false
		}
	}
	return int(counts[0]), true
}

func alignLeaves(ins []Operand, length int) []layout.Node {
	out := make([]layout.Node, len(ins))
	for j, o := range ins {
		if o.IsScalar() {
			out[j] = layout.MustNumeric(o.scalar.Take(make([]int64, length)))
			continue
		}
		out[j] = o.node
	}
	return out
}
