package layout

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Indexed is a permutation or projection of its content: element i is
// content[index[i]].
type Indexed struct {
	index   *buffer.Buffer
	content Node
	params  Parameters
}

// NewIndexed validates that every index is in [0, content length).
func NewIndexed(index *buffer.Buffer, content Node, params Parameters) (*Indexed, error) {
	const op = "Indexed"
	if err := requireIndex(op, "index", index); err != nil {
		return nil, err
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	n := int64(content.Length())
	for i := range index.Len() {
		if j := index.Int(i); j < 0 || j >= n {
			return nil, errs.Structural(op, fmt.Sprintf("index[%d] = %d outside [0, %d)", i, j, n))
		}
	}
	return &Indexed{index: index, content: content, params: params}, nil
}

// Index returns the index buffer.
func (x *Indexed) Index() *buffer.Buffer { return x.index }

// Content returns the child node.
func (x *Indexed) Content() Node { return x.content }

// Kind implements Node.
func (x *Indexed) Kind() Kind { return KindIndexed }

// Length implements Node.
func (x *Indexed) Length() int { return x.index.Len() }

// Parameters implements Node.
func (x *Indexed) Parameters() Parameters { return x.params }

func (x *Indexed) sealed() {}

// IndexedOption is a nullable projection: a negative index marks a missing
// element, a non-negative one selects from content.
type IndexedOption struct {
	index   *buffer.Buffer
	content Node
	params  Parameters
}

// NewIndexedOption validates that every non-negative index is within content.
func NewIndexedOption(index *buffer.Buffer, content Node, params Parameters) (*IndexedOption, error) {
	const op = "IndexedOption"
	if err := requireIndex(op, "index", index); err != nil {
		return nil, err
	}
	if err := requireContent(op, content); err != nil {
		return nil, err
	}
	if index.DType() == buffer.Uint8 {
		return nil, errs.Structural(op, "index buffer must be signed")
	}
	n := int64(content.Length())
	for i := range index.Len() {
		if j := index.Int(i); j >= n {
			return nil, errs.Structural(op, fmt.Sprintf("index[%d] = %d outside [0, %d)", i, j, n))
		}
	}
	return &IndexedOption{index: index, content: content, params: params}, nil
}

// Index returns the signed index buffer.
func (x *IndexedOption) Index() *buffer.Buffer { return x.index }

// Content returns the child node.
func (x *IndexedOption) Content() Node { return x.content }

// Kind implements Node.
func (x *IndexedOption) Kind() Kind { return KindIndexedOption }

// Length implements Node.
func (x *IndexedOption) Length() int { return x.index.Len() }

// Parameters implements Node.
func (x *IndexedOption) Parameters() Parameters { return x.params }

func (x *IndexedOption) sealed() {}
