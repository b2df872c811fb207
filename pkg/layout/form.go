package layout

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Form is the schema-only mirror of a Node: variant, primitive type, field
// names and nesting, without buffers or lengths.
type Form struct {
	Class      string     `json:"class" yaml:"class"`
	Primitive  string     `json:"primitive,omitempty" yaml:"primitive,omitempty"`
	InnerShape []int      `json:"inner_shape,omitempty" yaml:"inner_shape,omitempty"`
	Size       int        `json:"size,omitempty" yaml:"size,omitempty"`
	ValidWhen  *bool      `json:"valid_when,omitempty" yaml:"valid_when,omitempty"`
	LSBOrder   *bool      `json:"lsb_order,omitempty" yaml:"lsb_order,omitempty"`
	Fields     []string   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Content    *Form      `json:"content,omitempty" yaml:"content,omitempty"`
	Contents   []*Form    `json:"contents,omitempty" yaml:"contents,omitempty"`
	Parameters Parameters `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Form implements Node.
func (n *Numeric) Form() *Form {
	f := &Form{Class: KindNumeric.String(), Primitive: n.DType().String(), Parameters: n.params.Clone()}
	if shape := n.data.Shape(); len(shape) > 1 {
		f.InnerShape = shape[1:]
	}
	return f
}

// Form implements Node.
func (r *Regular) Form() *Form {
	return &Form{Class: KindRegular.String(), Size: r.size, Content: r.content.Form(), Parameters: r.params.Clone()}
}

// Form implements Node.
func (l *ListOffset) Form() *Form {
	return &Form{Class: KindListOffset.String(), Content: l.content.Form(), Parameters: l.params.Clone()}
}

// Form implements Node.
func (l *List) Form() *Form {
	return &Form{Class: KindList.String(), Content: l.content.Form(), Parameters: l.params.Clone()}
}

// Form implements Node.
func (x *Indexed) Form() *Form {
	return &Form{Class: KindIndexed.String(), Content: x.content.Form(), Parameters: x.params.Clone()}
}

// Form implements Node.
func (x *IndexedOption) Form() *Form {
	return &Form{Class: KindIndexedOption.String(), Content: x.content.Form(), Parameters: x.params.Clone()}
}

// Form implements Node.
func (m *ByteMasked) Form() *Form {
	return &Form{
		Class: KindByteMasked.String(), ValidWhen: lo.ToPtr(m.validWhen),
		Content: m.content.Form(), Parameters: m.params.Clone(),
	}
}

// Form implements Node.
func (m *BitMasked) Form() *Form {
	return &Form{
		Class: KindBitMasked.String(), ValidWhen: lo.ToPtr(m.validWhen), LSBOrder: lo.ToPtr(m.lsbOrder),
		Content: m.content.Form(), Parameters: m.params.Clone(),
	}
}

// Form implements Node.
func (m *Unmasked) Form() *Form {
	return &Form{Class: KindUnmasked.String(), Content: m.content.Form(), Parameters: m.params.Clone()}
}

// Form implements Node.
func (r *Record) Form() *Form {
	return &Form{
		Class:      KindRecord.String(),
		Fields:     slices.Clone(r.fields),
		Contents:   lo.Map(r.contents, func(c Node, _ int) *Form { return c.Form() }),
		Parameters: r.params.Clone(),
	}
}

// Form implements Node.
func (u *Union) Form() *Form {
	return &Form{
		Class:      KindUnion.String(),
		Contents:   lo.Map(u.contents, func(c Node, _ int) *Form { return c.Form() }),
		Parameters: u.params.Clone(),
	}
}

// Compatible reports whether two forms describe the same structure: same
// classes, primitives, sizes, field-name sets and parameters, recursively.
// Mask polarity and field order are not significant.
func (f *Form) Compatible(other *Form) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Class != other.Class || f.Primitive != other.Primitive || f.Size != other.Size {
		return false
	}
	if !slices.Equal(f.InnerShape, other.InnerShape) || !f.Parameters.Equal(other.Parameters) {
		return false
	}
	if !f.Content.Compatible(other.Content) || len(f.Contents) != len(other.Contents) {
		return false
	}
	if f.Class != KindRecord.String() || f.Fields == nil || other.Fields == nil {
		if (f.Fields == nil) != (other.Fields == nil) {
			return false
		}
		for i := range f.Contents {
			if !f.Contents[i].Compatible(other.Contents[i]) {
				return false
			}
		}
		return true
	}
	for i, name := range f.Fields {
		j := slices.Index(other.Fields, name)
		if j < 0 || !f.Contents[i].Compatible(other.Contents[j]) {
			return false
		}
	}
	return true
}

// Type renders the element type as a datashape-like string, for example
// "var * {x: float64, y: var * int64}" or "?string".
func (f *Form) Type() string {
	if f == nil {
		return "unknown"
	}
	switch f.Parameters.Get(ParamArray) {
	case ArrayString:
		return "string"
	case ArrayBytestring:
		return "bytes"
	case ArrayChar:
		return "char"
	case ArrayByte:
		return "byte"
	}
	switch f.Class {
	case KindNumeric.String():
		var sb strings.Builder
		for _, s := range f.InnerShape {
			sb.WriteString(strconv.Itoa(s))
			sb.WriteString(" * ")
		}
		sb.WriteString(f.Primitive)
		return sb.String()
	case KindRegular.String():
		return strconv.Itoa(f.Size) + " * " + f.Content.Type()
	case KindListOffset.String(), KindList.String():
		return "var * " + f.Content.Type()
	case KindIndexed.String():
		return f.Content.Type()
	case KindIndexedOption.String(), KindByteMasked.String(), KindBitMasked.String(), KindUnmasked.String():
		inner := f.Content.Type()
		if strings.ContainsAny(inner, "* ") || strings.HasPrefix(inner, "union[") {
			return "option[" + inner + "]"
		}
		return "?" + inner
	case KindRecord.String():
		types := lo.Map(f.Contents, func(c *Form, _ int) string { return c.Type() })
		if f.Fields == nil {
			return "(" + strings.Join(types, ", ") + ")"
		}
		parts := make([]string, len(types))
		for i, t := range types {
			parts[i] = f.Fields[i] + ": " + t
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindUnion.String():
		types := lo.Map(f.Contents, func(c *Form, _ int) string { return c.Type() })
		return "union[" + strings.Join(types, ", ") + "]"
	default:
		return "unknown"
	}
}

// TypeOf renders the full type of n including its outer length, for
// example "2 * {x: float64, y: var * int64}".
func TypeOf(n Node) string {
	return strconv.Itoa(n.Length()) + " * " + n.Form().Type()
}
