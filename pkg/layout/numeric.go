package layout

import (
	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Numeric is a flat run of primitive values. A buffer with more than one
// dimension behaves like nested Regular nodes over its flat data.
type Numeric struct {
	data   *buffer.Buffer
	params Parameters
}

// NewNumeric wraps a buffer. The buffer is referenced, not copied.
func NewNumeric(data *buffer.Buffer, params Parameters) (*Numeric, error) {
	if data == nil {
		return nil, errs.Structural("Numeric", "data buffer is nil")
	}
	return &Numeric{data: data, params: params}, nil
}

// MustNumeric is NewNumeric for buffers known to be valid.
func MustNumeric(data *buffer.Buffer) *Numeric {
	n, err := NewNumeric(data, nil)
	if err != nil {
		panic(err)
	}
	return n
}

// Data returns the underlying buffer.
func (n *Numeric) Data() *buffer.Buffer { return n.data }

// DType returns the element type.
func (n *Numeric) DType() buffer.DType { return n.data.DType() }

// Kind implements Node.
func (n *Numeric) Kind() Kind { return KindNumeric }

// Length implements Node.
func (n *Numeric) Length() int { return n.data.Len() }

// Parameters implements Node.
func (n *Numeric) Parameters() Parameters { return n.params }

func (n *Numeric) sealed() {}

// ToRegular rewrites a multi-dimensional Numeric as Regular nodes over a
// one-dimensional Numeric. One-dimensional input is returned unchanged.
func (n *Numeric) ToRegular() Node {
	if n.data.NDim() == 1 {
		return n
	}
	shape := n.data.Shape()
	flat := n.data.Slice(0, n.data.FlatLen())
	var out Node = &Numeric{data: flat}
	for i := len(shape) - 1; i >= 1; i-- {
		outer := 1
		for _, s := range shape[:i] {
			outer *= s
		}
		out = &Regular{content: out, size: shape[i], length: outer}
	}
	if r, ok := out.(*Regular); ok {
		r.params = n.params
	}
	return out
}
