package layout

import (
	"fmt"
	"slices"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Union is a tagged union: element i is contents[tags[i]][index[i]].
type Union struct {
	tags     *buffer.Buffer
	index    *buffer.Buffer
	contents []Node
	params   Parameters
}

// NewUnion validates tags and index against the alternatives.
func NewUnion(tags, index *buffer.Buffer, contents []Node, params Parameters) (*Union, error) {
	const op = "Union"
	if tags == nil || tags.DType() != buffer.Int8 {
		return nil, errs.Structural(op, "tags buffer must be int8")
	}
	if err := requireIndex(op, "index", index); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, errs.Structural(op, "union needs at least one alternative")
	}
	for _, c := range contents {
		if err := requireContent(op, c); err != nil {
			return nil, err
		}
	}
	if index.Len() < tags.Len() {
		return nil, errs.Structural(op,
			fmt.Sprintf("index length %d < tags length %d", index.Len(), tags.Len()))
	}
	for i := range tags.Len() {
		t := tags.Int(i)
		if t < 0 || t >= int64(len(contents)) {
			return nil, errs.Structural(op, fmt.Sprintf("tags[%d] = %d outside [0, %d)", i, t, len(contents)))
		}
		j := index.Int(i)
		if n := int64(contents[t].Length()); j < 0 || j >= n {
			return nil, errs.Structural(op,
				fmt.Sprintf("index[%d] = %d outside alternative %d of length %d", i, j, t, n))
		}
	}
	return &Union{tags: tags, index: index, contents: slices.Clone(contents), params: params}, nil
}

// Tags returns the tags buffer.
func (u *Union) Tags() *buffer.Buffer { return u.tags }

// Index returns the per-element index into the selected alternative.
func (u *Union) Index() *buffer.Buffer { return u.index }

// Contents returns the alternatives.
func (u *Union) Contents() []Node { return slices.Clone(u.contents) }

// NumContents returns the number of alternatives.
func (u *Union) NumContents() int { return len(u.contents) }

// Alternative returns alternative t.
func (u *Union) Alternative(t int) Node { return u.contents[t] }

// Kind implements Node.
func (u *Union) Kind() Kind { return KindUnion }

// Length implements Node.
func (u *Union) Length() int { return u.tags.Len() }

// Parameters implements Node.
func (u *Union) Parameters() Parameters { return u.params }

func (u *Union) sealed() {}

// Project returns the positions where tag == t and the alternative-t
// indices those positions select.
func (u *Union) Project(t int) (positions, index []int64) {
	for i := range u.tags.Len() {
		if int(u.tags.Int(i)) == t {
			positions = append(positions, int64(i))
			index = append(index, u.index.Int(i))
		}
	}
	return positions, index
}
