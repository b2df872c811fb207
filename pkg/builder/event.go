package builder

import (
	"strconv"
)

// EventKind identifies a construction event.
type EventKind uint8

// Event kinds.
const (
	EventNull EventKind = iota
	EventBoolean
	EventInteger
	EventReal
	EventString
	EventBeginList
	EventEndList
	EventBeginRecord
	EventField
	EventEndRecord
	EventBeginTuple
	EventIndex
	EventEndTuple
)

var eventNames = [...]string{
	EventNull:        "null",
	EventBoolean:     "boolean",
	EventInteger:     "integer",
	EventReal:        "real",
	EventString:      "string",
	EventBeginList:   "begin_list",
	EventEndList:     "end_list",
	EventBeginRecord: "begin_record",
	EventField:       "field",
	EventEndRecord:   "end_record",
	EventBeginTuple:  "begin_tuple",
	EventIndex:       "index",
	EventEndTuple:    "end_tuple",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "event(" + strconv.Itoa(int(k)) + ")"
}

// Event is one primitive construction step. Only the payload field that
// matches Kind is meaningful: Bool for booleans, Int for integers and tuple
// indices, Real for reals, Str for strings and field names.
type Event struct {
	Kind EventKind
	Bool bool
	Int  int64
	Real float64
	Str  string
}

// Event constructors.
func Null() Event { return Event{Kind: EventNull} }
func Bool(b bool) Event { return Event{Kind: EventBoolean, Bool: b} }
func Int(x int64) Event { return Event{Kind: EventInteger, Int: x} }
func Real(x float64) Event { return Event{Kind: EventReal, Real: x} }
func Str(s string) Event { return Event{Kind: EventString, Str: s} }
func BeginList() Event { return Event{Kind: EventBeginList} }
func EndList() Event { return Event{Kind: EventEndList} }
func BeginRecord() Event { return Event{Kind: EventBeginRecord} }
func Field(name string) Event { return Event{Kind: EventField, Str: name} }
func EndRecord() Event { return Event{Kind: EventEndRecord} }
func BeginTuple() Event { return Event{Kind: EventBeginTuple} }
func Index(i int) Event { return Event{Kind: EventIndex, Int: int64(i)} }
func EndTuple() Event { return Event{Kind: EventEndTuple} }

// String renders the event for diagnostics, e.g. "integer(3)".
func (e Event) String() string {
	switch e.Kind {
	case EventBoolean:
		return "boolean(" + strconv.FormatBool(e.Bool) + ")"
	case EventInteger:
		return "integer(" + strconv.FormatInt(e.Int, 10) + ")"
	case EventReal:
		return "real(" + strconv.FormatFloat(e.Real, 'g', -1, 64) + ")"
	case EventString:
		return "string(" + strconv.Quote(e.Str) + ")"
	case EventField:
		return "field(" + strconv.Quote(e.Str) + ")"
	case EventIndex:
		return "index(" + strconv.FormatInt(e.Int, 10) + ")"
	default:
		return e.Kind.String()
	}
}

// startsValue reports whether the event begins a value.
func (e Event) startsValue() bool {
	switch e.Kind {
	case EventNull, EventBoolean, EventInteger, EventReal, EventString,
		EventBeginList, EventBeginRecord, EventBeginTuple:
		return true
	default:
		return false
	}
}

// opensRecord reports whether the event begins a record or tuple.
func (e Event) opensRecord() bool {
	return e.Kind == EventBeginRecord || e.Kind == EventBeginTuple
}
