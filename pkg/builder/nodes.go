package builder

import (
	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

// node is one slot of the accumulator tree. feed and record return the
// node that replaces the receiver in its parent, which is how promotions
// propagate upward without parents knowing about them.
type node interface {
	// feed consumes one event. Record and tuple openers never reach an
	// inactive node directly; see feed.
	feed(ev Event) (node, error)

	// record appends one complete record or tuple.
	record(t *taped) (node, error)

	// active reports whether the node is in the middle of a value.
	active() bool

	// length is the number of completed values.
	length() int

	snapshot() (layout.Node, error)
	clone() node
}

// feed routes ev to n. A record or tuple arriving at an inactive node is
// captured whole before n sees it, so that n can decide between appending
// and promoting once every field name is known.
func feed(n node, ev Event) (node, error) {
	if !n.active() {
		if ev.opensRecord() {
			return &pending{target: n, tape: []Event{ev}, depth: 1}, nil
		}
		if !ev.startsValue() {
			return nil, structural(ev.String() + " outside of any container")
		}
	}
	return n.feed(ev)
}

// feedAll feeds a complete value.
func feedAll(n node, events []Event) (node, error) {
	var err error
	for _, ev := range events {
		if n, err = feed(n, ev); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// promote handles a value that n cannot hold: a null wraps n in an option,
// anything else turns n into the first alternative of a union.
func promote(opts Options, n node, ev Event) (node, error) {
	if ev.Kind == EventNull {
		return toOption(opts, n).feed(ev)
	}
	return feed(toUnion(opts, n), ev)
}

func toOption(opts Options, n node) *optionBuilder {
	return &optionBuilder{opts: opts, index: counting(opts, n.length()), content: n}
}

func toUnion(opts Options, n node) *unionBuilder {
	return &unionBuilder{
		opts:    opts,
		tags:    filled(opts, int8(0), n.length()),
		index:   counting(opts, n.length()),
		alts:    []node{n},
		current: -1,
	}
}

// newFor returns an empty node able to hold the value ev begins.
func newFor(opts Options, ev Event) node {
	switch ev.Kind {
	case EventBoolean:
		return &boolBuilder{opts: opts, data: NewGrowableBuffer[bool](opts)}
	case EventInteger:
		return &intBuilder{opts: opts, data: NewGrowableBuffer[int64](opts)}
	case EventReal:
		return &floatBuilder{opts: opts, data: NewGrowableBuffer[float64](opts)}
	case EventString:
		return newStringBuilder(opts)
	case EventBeginList:
		return newListBuilder(opts)
	default:
		return &unknownBuilder{opts: opts}
	}
}

// unknownBuilder has seen nothing but nulls.
type unknownBuilder struct {
	opts  Options
	nulls int
}

func (u *unknownBuilder) feed(ev Event) (node, error) {
	if ev.Kind == EventNull {
		u.nulls++
		return u, nil
	}
	return feed(u.commit(newFor(u.opts, ev)), ev)
}

func (u *unknownBuilder) record(t *taped) (node, error) {
	return u.commit(newRecordBuilder(u.opts, t)).record(t)
}

// commit replaces the unknown slot with a concrete node, keeping the nulls
// seen so far as missing positions.
func (u *unknownBuilder) commit(n node) node {
	if u.nulls == 0 {
		return n
	}
	return &optionBuilder{opts: u.opts, index: filled(u.opts, int64(-1), u.nulls), content: n}
}

func (u *unknownBuilder) active() bool { return false }
func (u *unknownBuilder) length() int  { return u.nulls }
func (u *unknownBuilder) clone() node  { return &unknownBuilder{opts: u.opts, nulls: u.nulls} }

func (u *unknownBuilder) snapshot() (layout.Node, error) {
	empty := layout.MustNumeric(buffer.Empty(buffer.Float64))
	if u.nulls == 0 {
		return empty, nil
	}
	return layout.NewIndexedOption(buffer.Full(-1, u.nulls), empty, nil)
}

type boolBuilder struct {
	opts Options
	data *GrowableBuffer[bool]
}

func (b *boolBuilder) feed(ev Event) (node, error) {
	if ev.Kind != EventBoolean {
		return promote(b.opts, b, ev)
	}
	b.data.Append(ev.Bool)
	return b, nil
}

func (b *boolBuilder) record(t *taped) (node, error) {
	return toUnion(b.opts, b).record(t)
}

func (b *boolBuilder) active() bool { return false }
func (b *boolBuilder) length() int  { return b.data.Len() }
func (b *boolBuilder) clone() node  { return &boolBuilder{opts: b.opts, data: b.data.Clone()} }

func (b *boolBuilder) snapshot() (layout.Node, error) {
	return layout.NewNumeric(buffer.FromBools(b.data.Snapshot()), nil)
}

type intBuilder struct {
	opts Options
	data *GrowableBuffer[int64]
}

func (b *intBuilder) feed(ev Event) (node, error) {
	switch ev.Kind {
	case EventInteger:
		b.data.Append(ev.Int)
		return b, nil
	case EventReal:
		return b.toFloat().feed(ev)
	default:
		return promote(b.opts, b, ev)
	}
}

// toFloat rewrites the integers seen so far as reals.
func (b *intBuilder) toFloat() *floatBuilder {
	f := &floatBuilder{opts: b.opts, data: NewGrowableBuffer[float64](b.opts)}
	for i := range b.data.Len() {
		f.data.Append(float64(b.data.Get(i)))
	}
	return f
}

func (b *intBuilder) record(t *taped) (node, error) {
	return toUnion(b.opts, b).record(t)
}

func (b *intBuilder) active() bool { return false }
func (b *intBuilder) length() int  { return b.data.Len() }
func (b *intBuilder) clone() node  { return &intBuilder{opts: b.opts, data: b.data.Clone()} }

func (b *intBuilder) snapshot() (layout.Node, error) {
	return layout.NewNumeric(buffer.FromInt64s(b.data.Snapshot()), nil)
}

type floatBuilder struct {
	opts Options
	data *GrowableBuffer[float64]
}

func (b *floatBuilder) feed(ev Event) (node, error) {
	switch ev.Kind {
	case EventReal:
		b.data.Append(ev.Real)
	case EventInteger:
		b.data.Append(float64(ev.Int))
	default:
		return promote(b.opts, b, ev)
	}
	return b, nil
}

func (b *floatBuilder) record(t *taped) (node, error) {
	return toUnion(b.opts, b).record(t)
}

func (b *floatBuilder) active() bool { return false }
func (b *floatBuilder) length() int  { return b.data.Len() }
func (b *floatBuilder) clone() node  { return &floatBuilder{opts: b.opts, data: b.data.Clone()} }

func (b *floatBuilder) snapshot() (layout.Node, error) {
	return layout.NewNumeric(buffer.FromFloat64s(b.data.Snapshot()), nil)
}

type stringBuilder struct {
	opts    Options
	offsets *GrowableBuffer[int64]
	chars   *GrowableBuffer[uint8]
}

func newStringBuilder(opts Options) *stringBuilder {
	offsets := NewGrowableBuffer[int64](opts)
	offsets.Append(0)
	return &stringBuilder{opts: opts, offsets: offsets, chars: NewGrowableBuffer[uint8](opts)}
}

func (s *stringBuilder) feed(ev Event) (node, error) {
	if ev.Kind != EventString {
		return promote(s.opts, s, ev)
	}
	for i := range len(ev.Str) {
		s.chars.Append(ev.Str[i])
	}
	s.offsets.Append(int64(s.chars.Len()))
	return s, nil
}

func (s *stringBuilder) record(t *taped) (node, error) {
	return toUnion(s.opts, s).record(t)
}

func (s *stringBuilder) active() bool { return false }
func (s *stringBuilder) length() int  { return s.offsets.Len() - 1 }

func (s *stringBuilder) clone() node {
	return &stringBuilder{opts: s.opts, offsets: s.offsets.Clone(), chars: s.chars.Clone()}
}

func (s *stringBuilder) snapshot() (layout.Node, error) {
	chars, err := layout.NewNumeric(buffer.FromUint8s(s.chars.Snapshot()),
		layout.Parameters{layout.ParamArray: layout.ArrayChar})
	if err != nil {
		return nil, err
	}
	return layout.NewListOffset(buffer.FromInt64s(s.offsets.Snapshot()), chars,
		layout.Parameters{layout.ParamArray: layout.ArrayString})
}

// structural reports a builder bug: an event reached a node that the
// validation layer should have kept it from.
func structural(detail string) error {
	return errs.Structural("builder", detail)
}
