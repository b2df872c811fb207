package layout

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// ReplaceLeaf rebuilds template with its single Numeric leaf replaced by a
// Numeric over data. The nesting, masks and parameters of template are kept;
// the leaf's own parameters are dropped since its type may have changed.
func ReplaceLeaf(template Node, data *buffer.Buffer) (Node, error) {
	const op = "ReplaceLeaf"
	switch v := template.(type) {
	case *Numeric:
		if data.FlatLen() != v.data.FlatLen() {
			return nil, errs.Shape(op,
				fmt.Sprintf("leaf has %d values, result has %d", v.data.FlatLen(), data.FlatLen()))
		}
		if v.data.NDim() > 1 {
			shaped, err := data.Reshape(v.data.Shape()...)
			if err != nil {
				return nil, errs.Shape(op, err.Error())
			}
			data = shaped
		}
		return &Numeric{data: data}, nil
	case *Record, *Union:
		return nil, errs.Invalid(op, template.Kind().String()+" has more than one leaf")
	}
	content := Content(template)
	if content == nil {
		return nil, errs.Invalid(op, "unsupported node "+template.Kind().String())
	}
	next, err := ReplaceLeaf(content, data)
	if err != nil {
		return nil, err
	}
	return WithContent(template, next), nil
}

// WithContent returns a shallow copy of a single-child node pointing at
// content. Records, unions and Numeric nodes are returned unchanged.
func WithContent(n, content Node) Node {
	switch v := n.(type) {
	case *Regular:
		c := *v
		c.content = content
		return &c
	case *ListOffset:
		c := *v
		c.content = content
		return &c
	case *List:
		c := *v
		c.content = content
		return &c
	case *Indexed:
		c := *v
		c.content = content
		return &c
	case *IndexedOption:
		c := *v
		c.content = content
		return &c
	case *ByteMasked:
		c := *v
		c.content = content
		return &c
	case *BitMasked:
		c := *v
		c.content = content
		return &c
	case *Unmasked:
		c := *v
		c.content = content
		return &c
	default:
		return n
	}
}
