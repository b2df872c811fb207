package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/ragged/pkg/errs"
)

// Record is a struct-of-arrays: each field is a child node and element i
// is the tuple of child elements at i. A Record without field names is a
// tuple. Length is explicit so a field-less record can still have length.
type Record struct {
	contents []Node
	fields   []string
	length   int
	params   Parameters
}

// NewRecord validates that every child has exactly length elements and that
// field names, when given, are unique and match the children in number.
// Pass nil fields for a tuple.
func NewRecord(contents []Node, fields []string, length int, params Parameters) (*Record, error) {
	const op = "Record"
	if length < 0 {
		return nil, errs.Structural(op, fmt.Sprintf("negative length %d", length))
	}
	if fields != nil && len(fields) != len(contents) {
		return nil, errs.Structural(op,
			fmt.Sprintf("%d field names for %d contents", len(fields), len(contents)))
	}
	if dups := lo.FindDuplicates(fields); len(dups) > 0 {
		return nil, errs.Structural(op, "duplicate field names: "+strings.Join(dups, ", "))
	}
	for i, c := range contents {
		if err := requireContent(op, c); err != nil {
			return nil, err
		}
		if c.Length() != length {
			return nil, errs.Structural(op,
				fmt.Sprintf("field %s has length %d, record length is %d",
					fieldLabel(fields, i), c.Length(), length)).WithPath(fieldLabel(fields, i))
		}
	}
	return &Record{
		contents: slices.Clone(contents),
		fields:   slices.Clone(fields),
		length:   length,
		params:   params,
	}, nil
}

func fieldLabel(fields []string, i int) string {
	if fields == nil {
		return strconv.Itoa(i)
	}
	return fields[i]
}

// IsTuple reports whether the record has positional fields only.
func (r *Record) IsTuple() bool { return r.fields == nil }

// Fields returns the field names, or positional names "0", "1", ... for a tuple.
func (r *Record) Fields() []string {
	if r.fields == nil {
		return lo.Times(len(r.contents), strconv.Itoa)
	}
	return slices.Clone(r.fields)
}

// Contents returns the children in field order.
func (r *Record) Contents() []Node { return slices.Clone(r.contents) }

// NumFields returns the number of fields.
func (r *Record) NumFields() int { return len(r.contents) }

// Field returns the child for name, or nil when there is no such field.
func (r *Record) Field(name string) Node {
	i := r.FieldIndex(name)
	if i < 0 {
		return nil
	}
	return r.contents[i]
}

// FieldIndex returns the position of name, or -1.
func (r *Record) FieldIndex(name string) int {
	if r.fields == nil {
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(r.contents) {
			return -1
		}
		return i
	}
	return slices.Index(r.fields, name)
}

// Kind implements Node.
func (r *Record) Kind() Kind { return KindRecord }

// Length implements Node.
func (r *Record) Length() int { return r.length }

// Parameters implements Node.
func (r *Record) Parameters() Parameters { return r.params }

func (r *Record) sealed() {}
