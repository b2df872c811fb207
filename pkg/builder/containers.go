package builder

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

type listBuilder struct {
	opts    Options
	offsets *GrowableBuffer[int64]
	content node
	begun   bool
}

func newListBuilder(opts Options) *listBuilder {
	offsets := NewGrowableBuffer[int64](opts)
	offsets.Append(0)
	return &listBuilder{opts: opts, offsets: offsets, content: &unknownBuilder{opts: opts}}
}

func (l *listBuilder) feed(ev Event) (node, error) {
	if !l.begun {
		if ev.Kind != EventBeginList {
			return promote(l.opts, l, ev)
		}
		l.begun = true
		return l, nil
	}
	if ev.Kind == EventEndList && !l.content.active() {
		l.begun = false
		l.offsets.Append(int64(l.content.length()))
		return l, nil
	}
	content, err := feed(l.content, ev)
	if err != nil {
		return nil, err
	}
	l.content = content
	return l, nil
}

func (l *listBuilder) record(t *taped) (node, error) {
	return toUnion(l.opts, l).record(t)
}

func (l *listBuilder) active() bool { return l.begun }
func (l *listBuilder) length() int  { return l.offsets.Len() - 1 }

func (l *listBuilder) clone() node {
	return &listBuilder{opts: l.opts, offsets: l.offsets.Clone(), content: l.content.clone(), begun: l.begun}
}

func (l *listBuilder) snapshot() (layout.Node, error) {
	content, err := l.content.snapshot()
	if err != nil {
		return nil, err
	}
	return layout.NewListOffset(buffer.FromInt64s(l.offsets.Snapshot()), content, nil)
}

// optionBuilder records missing positions as -1 in an index over its content.
type optionBuilder struct {
	opts    Options
	index   *GrowableBuffer[int64]
	content node
}

func (o *optionBuilder) feed(ev Event) (node, error) {
	switch {
	case o.content.active():
	case ev.Kind == EventNull:
		o.index.Append(-1)
		return o, nil
	default:
		o.index.Append(int64(o.content.length()))
	}
	content, err := feed(o.content, ev)
	if err != nil {
		return nil, err
	}
	o.content = content
	return o, nil
}

func (o *optionBuilder) record(t *taped) (node, error) {
	o.index.Append(int64(o.content.length()))
	content, err := o.content.record(t)
	if err != nil {
		return nil, err
	}
	o.content = content
	return o, nil
}

func (o *optionBuilder) active() bool { return o.content.active() }

// length excludes a value still under construction, whose index entry is
// written when it begins.
func (o *optionBuilder) length() int {
	if o.content.active() {
		return o.index.Len() - 1
	}
	return o.index.Len()
}

func (o *optionBuilder) clone() node {
	return &optionBuilder{opts: o.opts, index: o.index.Clone(), content: o.content.clone()}
}

func (o *optionBuilder) snapshot() (layout.Node, error) {
	content, err := o.content.snapshot()
	if err != nil {
		return nil, err
	}
	return layout.NewIndexedOption(buffer.FromInt64s(o.index.Snapshot()), content, nil)
}

// recordBuilder holds records with one fixed set of field names, or tuples
// with one fixed arity. Field order is the order of the first record seen.
type recordBuilder struct {
	opts     Options
	tuple    bool
	fields   []string
	contents []node
	n        int
}

func newRecordBuilder(opts Options, t *taped) *recordBuilder {
	r := &recordBuilder{opts: opts, tuple: t.tuple}
	if !t.tuple {
		r.fields = slices.Clone(t.keys)
	}
	r.contents = lo.Times(len(t.values), func(int) node { return &unknownBuilder{opts: opts} })
	return r
}

// fits reports whether t can be appended without introducing a field.
// Records missing some of the fields fit; their absent fields become null.
func (r *recordBuilder) fits(t *taped) bool {
	if t.tuple != r.tuple {
		return false
	}
	if t.tuple {
		return len(t.values) == len(r.contents)
	}
	return lo.Every(r.fields, t.keys)
}

func (r *recordBuilder) feed(ev Event) (node, error) {
	return promote(r.opts, r, ev)
}

func (r *recordBuilder) record(t *taped) (node, error) {
	if !r.fits(t) {
		return toUnion(r.opts, r).record(t)
	}
	for f := range r.contents {
		events, ok := t.value(r.key(f), f)
		if !ok {
			events = []Event{Null()}
		}
		content, err := feedAll(r.contents[f], events)
		if err != nil {
			return nil, err
		}
		r.contents[f] = content
	}
	r.n++
	return r, nil
}

func (r *recordBuilder) key(f int) string {
	if r.tuple {
		return ""
	}
	return r.fields[f]
}

func (r *recordBuilder) active() bool { return false }
func (r *recordBuilder) length() int  { return r.n }

func (r *recordBuilder) clone() node {
	return &recordBuilder{
		opts:     r.opts,
		tuple:    r.tuple,
		fields:   slices.Clone(r.fields),
		contents: lo.Map(r.contents, func(c node, _ int) node { return c.clone() }),
		n:        r.n,
	}
}

func (r *recordBuilder) snapshot() (layout.Node, error) {
	contents := make([]layout.Node, len(r.contents))
	for f, c := range r.contents {
		out, err := c.snapshot()
		if err != nil {
			return nil, err
		}
		contents[f] = out
	}
	fields := r.fields
	if !r.tuple && fields == nil {
		fields = []string{}
	}
	return layout.NewRecord(contents, fields, r.n, nil)
}

// unionBuilder holds values of different kinds, one alternative per kind.
type unionBuilder struct {
	opts  Options
	tags  *GrowableBuffer[int8]
	index *GrowableBuffer[int64]
	alts  []node

	// current is the alternative receiving an unfinished value, or -1.
	current int
}

func (u *unionBuilder) feed(ev Event) (node, error) {
	if u.current >= 0 {
		alt, err := feed(u.alts[u.current], ev)
		if err != nil {
			return nil, err
		}
		u.alts[u.current] = alt
		if !alt.active() {
			u.current = -1
		}
		return u, nil
	}
	if ev.Kind == EventNull {
		return toOption(u.opts, u).feed(ev)
	}

	tag, err := u.pick(ev)
	if err != nil {
		return nil, err
	}
	u.tags.Append(int8(tag))
	u.index.Append(int64(u.alts[tag].length()))
	alt, err := feed(u.alts[tag], ev)
	if err != nil {
		return nil, err
	}
	u.alts[tag] = alt
	if alt.active() {
		u.current = tag
	}
	return u, nil
}

// pick returns the alternative for the value ev begins, creating it when
// no alternative holds that kind. An integer alternative is widened in place
// when a real arrives and no real alternative exists.
func (u *unionBuilder) pick(ev Event) (int, error) {
	for tag, alt := range u.alts {
		if accepts(alt, ev) {
			return tag, nil
		}
	}
	if ev.Kind == EventReal {
		for tag, alt := range u.alts {
			if ints, ok := alt.(*intBuilder); ok {
				u.alts[tag] = ints.toFloat()
				return tag, nil
			}
		}
	}
	return u.add(newFor(u.opts, ev))
}

func (u *unionBuilder) add(alt node) (int, error) {
	if len(u.alts) >= maxAlternatives {
		return 0, errs.New(errs.KindUnrepresentable, "builder",
			fmt.Sprintf("union cannot hold more than %d alternatives", maxAlternatives))
	}
	u.alts = append(u.alts, alt)
	return len(u.alts) - 1, nil
}

func (u *unionBuilder) record(t *taped) (node, error) {
	tag := slices.IndexFunc(u.alts, func(alt node) bool {
		r, ok := alt.(*recordBuilder)
		return ok && r.fits(t)
	})
	if tag < 0 {
		var err error
		if tag, err = u.add(newRecordBuilder(u.opts, t)); err != nil {
			return nil, err
		}
	}
	u.tags.Append(int8(tag))
	u.index.Append(int64(u.alts[tag].length()))
	alt, err := u.alts[tag].record(t)
	if err != nil {
		return nil, err
	}
	u.alts[tag] = alt
	return u, nil
}

const maxAlternatives = 128

func accepts(alt node, ev Event) bool {
	switch alt.(type) {
	case *boolBuilder:
		return ev.Kind == EventBoolean
	case *intBuilder:
		return ev.Kind == EventInteger
	case *floatBuilder:
		return ev.Kind == EventInteger || ev.Kind == EventReal
	case *stringBuilder:
		return ev.Kind == EventString
	case *listBuilder:
		return ev.Kind == EventBeginList
	default:
		return false
	}
}

func (u *unionBuilder) active() bool { return u.current >= 0 }

func (u *unionBuilder) length() int {
	if u.current >= 0 {
		return u.tags.Len() - 1
	}
	return u.tags.Len()
}

func (u *unionBuilder) clone() node {
	return &unionBuilder{
		opts:    u.opts,
		tags:    u.tags.Clone(),
		index:   u.index.Clone(),
		alts:    lo.Map(u.alts, func(c node, _ int) node { return c.clone() }),
		current: u.current,
	}
}

func (u *unionBuilder) snapshot() (layout.Node, error) {
	contents := make([]layout.Node, len(u.alts))
	for tag, alt := range u.alts {
		out, err := alt.snapshot()
		if err != nil {
			return nil, err
		}
		contents[tag] = out
	}
	return layout.NewUnion(buffer.FromInt8s(u.tags.Snapshot()), buffer.FromInt64s(u.index.Snapshot()), contents, nil)
}

// pending captures the events of one record or tuple until it closes, then
// hands the whole value to target.
type pending struct {
	target node
	tape   []Event
	depth  int
}

func (p *pending) feed(ev Event) (node, error) {
	p.tape = append(p.tape, ev)
	switch ev.Kind {
	case EventBeginRecord, EventBeginTuple:
		p.depth++
	case EventEndRecord, EventEndTuple:
		p.depth--
	}
	if p.depth > 0 {
		return p, nil
	}
	t, err := parseTape(p.tape)
	if err != nil {
		return nil, err
	}
	return p.target.record(t)
}

func (p *pending) record(*taped) (node, error) {
	return nil, structural("record delivered to an unfinished record")
}

func (p *pending) active() bool { return true }
func (p *pending) length() int  { return p.target.length() }

func (p *pending) clone() node {
	return &pending{target: p.target.clone(), tape: slices.Clone(p.tape), depth: p.depth}
}

func (p *pending) snapshot() (layout.Node, error) {
	return p.target.snapshot()
}

// taped is one complete record or tuple split into its field values.
type taped struct {
	tuple bool

	// keys are the field names in order of appearance; nil for tuples.
	keys []string

	// values holds the events of each field, parallel to keys, or indexed
	// by position for tuples. A nil tuple slot was never given.
	values [][]Event
}

// value returns the events for the field named key, or slot f of a tuple.
func (t *taped) value(key string, f int) ([]Event, bool) {
	if t.tuple {
		if f < len(t.values) && t.values[f] != nil {
			return t.values[f], true
		}
		return nil, false
	}
	i := slices.Index(t.keys, key)
	if i < 0 {
		return nil, false
	}
	return t.values[i], true
}

func parseTape(tape []Event) (*taped, error) {
	t := &taped{tuple: tape[0].Kind == EventBeginTuple}
	if !t.tuple {
		t.keys = []string{}
	}
	for i := 1; i < len(tape)-1; {
		key := tape[i]
		end, err := valueEnd(tape, i+1)
		if err != nil {
			return nil, err
		}
		value := tape[i+1 : end]
		switch key.Kind {
		case EventField:
			t.keys = append(t.keys, key.Str)
			t.values = append(t.values, value)
		case EventIndex:
			for int64(len(t.values)) <= key.Int {
				t.values = append(t.values, nil)
			}
			t.values[key.Int] = value
		default:
			return nil, structural("expected a field or index, got " + key.String())
		}
		i = end
	}
	return t, nil
}

// valueEnd returns the position just past the value starting at tape[i].
func valueEnd(tape []Event, i int) (int, error) {
	depth := 0
	for j := i; j < len(tape)-1; j++ {
		switch tape[j].Kind {
		case EventBeginList, EventBeginRecord, EventBeginTuple:
			depth++
		case EventEndList, EventEndRecord, EventEndTuple:
			depth--
		}
		if depth == 0 {
			return j + 1, nil
		}
	}
	return 0, structural("record value runs past its closing event")
}
