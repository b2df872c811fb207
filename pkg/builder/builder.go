// Package builder grows a layout tree incrementally from a stream of
// construction events.
//
// The builder infers the node kinds from the data: integers followed by a
// real become reals, a value of a different kind turns the slot into a
// union whose first alternative holds everything appended before, and nulls
// wrap the slot in an option. Events are validated before they touch the
// accumulator, so a rejected event leaves the builder unchanged.
//
//	b := builder.New(builder.DefaultOptions())
//	_ = b.Integer(1)
//	_ = b.Integer(2)
//	_ = b.Str("three")
//	node, _ := b.Snapshot() // union of int64 and string
package builder

import (
	"fmt"
	"slices"

	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

const op = "builder"

// frame is one open container on the validation stack.
type frame struct {
	kind EventKind

	// expecting is set between a field or index event and its value.
	expecting bool

	// seen holds the field names (or tuple indices) already given.
	seen []string
}

// ArrayBuilder accumulates top-level values. It is not safe for concurrent
// use.
type ArrayBuilder struct {
	opts  Options
	root  node
	stack []frame
}

// New returns an empty builder. Invalid options fall back to the defaults.
func New(opts Options) *ArrayBuilder {
	if opts.Validate() != nil {
		opts = DefaultOptions()
	}
	return &ArrayBuilder{opts: opts, root: &unknownBuilder{opts: opts}}
}

// Apply validates ev against the open containers and appends it.
func (b *ArrayBuilder) Apply(ev Event) error {
	if err := b.check(ev); err != nil {
		return err
	}
	root, err := feed(b.root, ev)
	if err != nil {
		return fmt.Errorf("apply %s: %w", ev, err)
	}
	b.root = root
	b.track(ev)
	return nil
}

// Extend applies events in order, stopping at the first error.
func (b *ArrayBuilder) Extend(events []Event) error {
	for _, ev := range events {
		if err := b.Apply(ev); err != nil {
			return err
		}
	}
	return nil
}

// MaxTupleFields bounds tuple indexes. Slots below the largest index that
// were never given are missing, so the bound caps the padding too.
const MaxTupleFields = 4096

// check rejects an event that does not fit the open containers.
func (b *ArrayBuilder) check(ev Event) error {
	var top *frame
	if len(b.stack) > 0 {
		top = &b.stack[len(b.stack)-1]
	}
	inRecord := top != nil && (top.kind == EventBeginRecord || top.kind == EventBeginTuple)

	switch {
	case ev.startsValue():
		if inRecord && !top.expecting {
			return unbalanced(fmt.Sprintf("%s in a %s without a field", ev, containerName(top.kind)))
		}
	case ev.Kind == EventField:
		if top == nil || top.kind != EventBeginRecord || top.expecting {
			return unbalanced(fmt.Sprintf("%s outside of a record", ev))
		}
		if slices.Contains(top.seen, ev.Str) {
			return errs.Invalid(op, fmt.Sprintf("duplicate field %q", ev.Str))
		}
	case ev.Kind == EventIndex:
		if top == nil || top.kind != EventBeginTuple || top.expecting {
			return unbalanced(fmt.Sprintf("%s outside of a tuple", ev))
		}
		if ev.Int < 0 || ev.Int >= MaxTupleFields {
			return errs.Invalid(op, fmt.Sprintf("tuple index %d is outside [0, %d)", ev.Int, MaxTupleFields))
		}
		if slices.Contains(top.seen, indexKey(ev.Int)) {
			return errs.Invalid(op, fmt.Sprintf("duplicate tuple index %d", ev.Int))
		}
	default:
		want := opener(ev.Kind)
		if top == nil || top.kind != want {
			return unbalanced(fmt.Sprintf("%s without a matching %s", ev, want))
		}
		if top.expecting {
			return unbalanced(fmt.Sprintf("%s after a field with no value", ev))
		}
	}
	return nil
}

// track updates the validation stack after ev was accepted.
func (b *ArrayBuilder) track(ev Event) {
	if ev.startsValue() && len(b.stack) > 0 {
		b.stack[len(b.stack)-1].expecting = false
	}
	switch ev.Kind {
	case EventBeginList, EventBeginRecord, EventBeginTuple:
		b.stack = append(b.stack, frame{kind: ev.Kind})
	case EventEndList, EventEndRecord, EventEndTuple:
		b.stack = b.stack[:len(b.stack)-1]
	case EventField:
		top := &b.stack[len(b.stack)-1]
		top.expecting = true
		top.seen = append(top.seen, ev.Str)
	case EventIndex:
		top := &b.stack[len(b.stack)-1]
		top.expecting = true
		top.seen = append(top.seen, indexKey(ev.Int))
	}
}

// Null appends a missing value.
func (b *ArrayBuilder) Null() error { return b.Apply(Null()) }

// Boolean appends a boolean.
func (b *ArrayBuilder) Boolean(v bool) error { return b.Apply(Bool(v)) }

// Integer appends an integer.
func (b *ArrayBuilder) Integer(v int64) error { return b.Apply(Int(v)) }

// Real appends a floating-point number.
func (b *ArrayBuilder) Real(v float64) error { return b.Apply(Real(v)) }

// Str appends a string.
func (b *ArrayBuilder) Str(v string) error { return b.Apply(Str(v)) }

// BeginList opens a list.
func (b *ArrayBuilder) BeginList() error { return b.Apply(BeginList()) }

// EndList closes the innermost list.
func (b *ArrayBuilder) EndList() error { return b.Apply(EndList()) }

// BeginRecord opens a record.
func (b *ArrayBuilder) BeginRecord() error { return b.Apply(BeginRecord()) }

// Field names the next value of the open record.
func (b *ArrayBuilder) Field(name string) error { return b.Apply(Field(name)) }

// EndRecord closes the innermost record.
func (b *ArrayBuilder) EndRecord() error { return b.Apply(EndRecord()) }

// BeginTuple opens a tuple.
func (b *ArrayBuilder) BeginTuple() error { return b.Apply(BeginTuple()) }

// Index selects the slot of the open tuple that receives the next value.
func (b *ArrayBuilder) Index(i int) error { return b.Apply(Index(i)) }

// EndTuple closes the innermost tuple.
func (b *ArrayBuilder) EndTuple() error { return b.Apply(EndTuple()) }

// Length returns the number of completed top-level values.
func (b *ArrayBuilder) Length() int { return b.root.length() }

// Depth returns the number of open containers.
func (b *ArrayBuilder) Depth() int { return len(b.stack) }

// Snapshot materializes the values appended so far. Open containers are
// closed on a copy of the accumulator, with null filling a field that has
// no value yet, so the builder itself is left as it was and later appends
// never show through an earlier snapshot.
func (b *ArrayBuilder) Snapshot() (layout.Node, error) {
	if len(b.stack) == 0 {
		return b.root.snapshot()
	}
	root := b.root.clone()
	var err error
	for i := len(b.stack) - 1; i >= 0; i-- {
		fr := b.stack[i]
		if fr.expecting {
			if root, err = feed(root, Null()); err != nil {
				return nil, err
			}
		}
		if root, err = feed(root, closer(fr.kind)); err != nil {
			return nil, err
		}
	}
	return root.snapshot()
}

// Finish materializes the values appended so far and fails if any
// container is still open.
func (b *ArrayBuilder) Finish() (layout.Node, error) {
	if len(b.stack) > 0 {
		return nil, unbalanced(fmt.Sprintf("%d containers still open, innermost %s",
			len(b.stack), containerName(b.stack[len(b.stack)-1].kind)))
	}
	return b.root.snapshot()
}

// Form returns the form of the current snapshot.
func (b *ArrayBuilder) Form() (*layout.Form, error) {
	n, err := b.Snapshot()
	if err != nil {
		return nil, err
	}
	return n.Form(), nil
}

func unbalanced(detail string) error {
	return errs.New(errs.KindUnbalancedContainer, op, detail)
}

func opener(k EventKind) EventKind {
	switch k {
	case EventEndRecord:
		return EventBeginRecord
	case EventEndTuple:
		return EventBeginTuple
	default:
		return EventBeginList
	}
}

func closer(k EventKind) Event {
	switch k {
	case EventBeginRecord:
		return EndRecord()
	case EventBeginTuple:
		return EndTuple()
	default:
		return EndList()
	}
}

func containerName(k EventKind) string {
	switch k {
	case EventBeginRecord:
		return "record"
	case EventBeginTuple:
		return "tuple"
	default:
		return "list"
	}
}

func indexKey(i int64) string {
	return fmt.Sprintf("#%d", i)
}
