package layout

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// ByteMasked marks missing values with one mask byte per element. Element
// i is present when (mask[i] != 0) == validWhen.
type ByteMasked struct {
	mask      *buffer.Buffer
	content   Node
	validWhen bool
	params    Parameters
}

// NewByteMasked validates the mask against content.
func NewByteMasked(mask *buffer.Buffer, content Node, validWhen bool, params Parameters) (*ByteMasked, error) {
	const op = "ByteMasked"
	if mask == nil {
		return nil, errs.Structural(op, "mask buffer is nil")
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	switch mask.DType() {
	case buffer.Bool, buffer.Int8, buffer.Uint8:
	default:
		return nil, errs.Structural(op, "mask must be bool, int8 or uint8, got "+mask.DType().String())
	}
	if mask.Len() > content.Length() {
		return nil, errs.Structural(op,
			fmt.Sprintf("mask length %d exceeds content length %d", mask.Len(), content.Length()))
	}
	return &ByteMasked{mask: mask, content: content, validWhen: validWhen, params: params}, nil
}

// Mask returns the mask buffer.
func (m *ByteMasked) Mask() *buffer.Buffer { return m.mask }

// Content returns the child node.
func (m *ByteMasked) Content() Node { return m.content }

// ValidWhen returns the mask value meaning "present".
func (m *ByteMasked) ValidWhen() bool { return m.validWhen }

// IsValid reports whether element i is present.
func (m *ByteMasked) IsValid(i int) bool { return m.mask.IsTrue(i) == m.validWhen }

// Kind implements Node.
func (m *ByteMasked) Kind() Kind { return KindByteMasked }

// Length implements Node.
func (m *ByteMasked) Length() int { return m.mask.Len() }

// Parameters implements Node.
func (m *ByteMasked) Parameters() Parameters { return m.params }

func (m *ByteMasked) sealed() {}

// BitMasked marks missing values with packed bits. Bit i lives in byte i/8,
// least-significant first when lsbOrder is set.
type BitMasked struct {
	mask      *buffer.Buffer
	content   Node
	validWhen bool
	length    int
	lsbOrder  bool
	params    Parameters
}

// NewBitMasked validates that the mask carries at least length bits.
func NewBitMasked(mask *buffer.Buffer, content Node, validWhen bool, length int, lsbOrder bool,
	params Parameters,
) (*BitMasked, error) {
	const op = "BitMasked"
	if mask == nil {
		return nil, errs.Structural(op, "mask buffer is nil")
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	if mask.DType() != buffer.Uint8 {
		return nil, errs.Structural(op, "mask must be uint8, got "+mask.DType().String())
	}
	if length < 0 {
		return nil, errs.Structural(op, fmt.Sprintf("negative length %d", length))
	}
	if mask.Len()*8 < length {
		return nil, errs.Structural(op, fmt.Sprintf("%d mask bits cannot cover length %d", mask.Len()*8, length))
	}
	if length > content.Length() {
		return nil, errs.Structural(op,
			fmt.Sprintf("length %d exceeds content length %d", length, content.Length()))
	}
	return &BitMasked{
		mask: mask, content: content, validWhen: validWhen,
		length: length, lsbOrder: lsbOrder, params: params,
	}, nil
}

// Mask returns the packed mask buffer.
func (m *BitMasked) Mask() *buffer.Buffer { return m.mask }

// Content returns the child node.
func (m *BitMasked) Content() Node { return m.content }

// ValidWhen returns the bit value meaning "present".
func (m *BitMasked) ValidWhen() bool { return m.validWhen }

// LSBOrder reports the bit order within each byte.
func (m *BitMasked) LSBOrder() bool { return m.lsbOrder }

// IsValid reports whether element i is present.
func (m *BitMasked) IsValid(i int) bool {
	b := byte(m.mask.Int(i / 8))
	shift := uint(i % 8)
	if !m.lsbOrder {
		shift = 7 - shift
	}
	return (b>>shift)&1 == 1 == m.validWhen
}

// Kind implements Node.
func (m *BitMasked) Kind() Kind { return KindBitMasked }

// Length implements Node.
func (m *BitMasked) Length() int { return m.length }

// Parameters implements Node.
func (m *BitMasked) Parameters() Parameters { return m.params }

func (m *BitMasked) sealed() {}

// Unmasked is an option type that asserts no element is missing.
type Unmasked struct {
	content Node
	params  Parameters
}

// NewUnmasked wraps content.
func NewUnmasked(content Node, params Parameters) (*Unmasked, error) {
	if err := requireContent("Unmasked", content); err != nil {
		return nil, err
	}
	return &Unmasked{content: content, params: params}, nil
}

// Content returns the child node.
func (m *Unmasked) Content() Node { return m.content }

// Kind implements Node.
func (m *Unmasked) Kind() Kind { return KindUnmasked }

// Length implements Node.
func (m *Unmasked) Length() int { return m.content.Length() }

// Parameters implements Node.
func (m *Unmasked) Parameters() Parameters { return m.params }

func (m *Unmasked) sealed() {}

// OptionIndex returns a signed index for any option variant: -1 where the
// element is missing, otherwise the content position. The second result is
// the content the index points into.
func OptionIndex(n Node) ([]int64, Node, bool) {
	switch v := n.(type) {
	case *IndexedOption:
		idx := v.index.Int64s()
		for i, j := range idx {
			if j < 0 {
				idx[i] = -1
			}
		}
		return idx, v.content, true
	case *ByteMasked:
		idx := make([]int64, v.Length())
		for i := range idx {
			idx[i] = -1
			if v.IsValid(i) {
				idx[i] = int64(i)
			}
		}
		return idx, v.content, true
	case *BitMasked:
		idx := make([]int64, v.length)
		for i := range idx {
			idx[i] = -1
			if v.IsValid(i) {
				idx[i] = int64(i)
			}
		}
		return idx, v.content, true
	case *Unmasked:
		return buffer.Arange(v.Length()).Int64s(), v.content, true
	default:
		return nil, nil, false
	}
}

// ToByteMask returns a per-element validity slice for any option variant.
func ToByteMask(n Node) ([]bool, bool) {
	idx, _, ok := OptionIndex(n)
	if !ok {
		return nil, false
	}
	out := make([]bool, len(idx))
	for i, j := range idx {
		out[i] = j >= 0
	}
	return out, true
}
