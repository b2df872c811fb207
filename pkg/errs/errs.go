// Package errs defines the structured error type shared by the ragged packages.
//
// Every error returned by the layout, broadcast, reduce, builder and codec
// packages is an *Error carrying a Kind. Callers match on kinds with
// errors.Is against the exported sentinels:
//
//	if errors.Is(err, errs.ErrIncompatibleShape) { ... }
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Kind categorizes an error.
type Kind string

const (
	// KindStructuralInvariant is a malformed offsets/index/mask buffer found at node construction.
	KindStructuralInvariant Kind = "structural_invariant_violation"
	// KindIncompatibleShape is raised when sublist lengths or record fields cannot be broadcast.
	KindIncompatibleShape Kind = "incompatible_shape"
	// KindIncompatibleDepth is raised when an axis is deeper than the nesting.
	KindIncompatibleDepth Kind = "incompatible_depth"
	// KindRecordReduction is raised when records cannot be combined by a reducer.
	KindRecordReduction Kind = "record_reduction"
	// KindUnbalancedContainer is a builder event sequence with unmatched begin/end events.
	KindUnbalancedContainer Kind = "unbalanced_container"
	// KindIncompleteFragment is text that ends in the middle of a value.
	KindIncompleteFragment Kind = "incomplete_fragment"
	// KindTrailingData is top-level content glued to the previous value without a separator.
	KindTrailingData Kind = "trailing_data"
	// KindSyntax is a malformed token inside a value.
	KindSyntax Kind = "syntax"
	// KindUnrepresentable is a value the encoder has no textual form for.
	KindUnrepresentable Kind = "unrepresentable"
	// KindInvalidArgument is an option or argument outside its domain.
	KindInvalidArgument Kind = "invalid_argument"
)

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrStructuralInvariant = &Error{Kind: KindStructuralInvariant, Offset: -1}
	ErrIncompatibleShape   = &Error{Kind: KindIncompatibleShape, Offset: -1}
	ErrIncompatibleDepth   = &Error{Kind: KindIncompatibleDepth, Offset: -1}
	ErrRecordReduction     = &Error{Kind: KindRecordReduction, Offset: -1}
	ErrUnbalancedContainer = &Error{Kind: KindUnbalancedContainer, Offset: -1}
	ErrIncompleteFragment  = &Error{Kind: KindIncompleteFragment, Offset: -1}
	ErrTrailingData        = &Error{Kind: KindTrailingData, Offset: -1}
	ErrSyntax              = &Error{Kind: KindSyntax, Offset: -1}
	ErrUnrepresentable     = &Error{Kind: KindUnrepresentable, Offset: -1}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument, Offset: -1}
)

// Error is the structured error type used throughout ragged.
type Error struct {
	Kind Kind

	// Op names the operation that detected the problem (e.g. "ListOffset", "broadcast").
	Op string

	// Detail is a human-readable description.
	Detail string

	// Path locates the problem inside a nested structure (field names, positions).
	Path []string

	// Offset is a character offset into text input, or -1 when not applicable.
	Offset int

	Cause error
}

// New creates an error of the given kind.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Offset: -1}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		b.WriteString(" (offset ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// WithPath returns a copy of e with segment prepended to its path.
func (e *Error) WithPath(segment string) *Error {
	cp := *e
	cp.Path = append([]string{segment}, e.Path...)
	return &cp
}

// WithOffset returns a copy of e located at a text offset.
func (e *Error) WithOffset(offset int) *Error {
	cp := *e
	cp.Offset = offset
	return &cp
}

// Structural reports a StructuralInvariantViolation.
func Structural(op, detail string) *Error {
	return New(KindStructuralInvariant, op, detail)
}

// Shape reports an IncompatibleShape error.
func Shape(op, detail string) *Error {
	return New(KindIncompatibleShape, op, detail)
}

// Depth reports an IncompatibleDepth error.
func Depth(op, detail string) *Error {
	return New(KindIncompatibleDepth, op, detail)
}

// Invalid reports an InvalidArgument error.
func Invalid(op, detail string) *Error {
	return New(KindInvalidArgument, op, detail)
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
