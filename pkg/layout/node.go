// Package layout defines the tree of node variants that describe nested,
// variable-length, possibly missing and possibly heterogeneous data in
// structure-of-arrays form.
//
// The variant set is closed: Numeric, Regular, ListOffset, List, Indexed,
// IndexedOption, ByteMasked, BitMasked, Unmasked, Record and Union. Nodes
// are immutable once constructed. Constructors validate their invariants
// eagerly and return a StructuralInvariantViolation instead of repairing
// malformed buffers. Children are shared by reference: wrapping a node in
// an Indexed or ListOffset view never copies it.
package layout

import (
	"maps"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Kind identifies a node variant.
type Kind uint8

// Node variants.
const (
	KindNumeric Kind = iota
	KindRegular
	KindListOffset
	KindList
	KindIndexed
	KindIndexedOption
	KindByteMasked
	KindBitMasked
	KindUnmasked
	KindRecord
	KindUnion
)

var kindNames = [...]string{
	KindNumeric:       "Numeric",
	KindRegular:       "Regular",
	KindListOffset:    "ListOffset",
	KindList:          "List",
	KindIndexed:       "Indexed",
	KindIndexedOption: "IndexedOption",
	KindByteMasked:    "ByteMasked",
	KindBitMasked:     "BitMasked",
	KindUnmasked:      "Unmasked",
	KindRecord:        "Record",
	KindUnion:         "Union",
}

// String returns the variant name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind parses a variant name produced by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Node is a layout tree node. The implementations in this package are the
// only ones; the interface is sealed.
type Node interface {
	// Kind identifies the variant.
	Kind() Kind

	// Length is the number of elements at this node's nesting level.
	Length() int

	// Parameters returns the node's parameters. Callers must not modify the map.
	Parameters() Parameters

	// Form returns the schema-only description of the subtree.
	Form() *Form

	sealed()
}

// Parameter keys with a meaning to ragged.
const (
	// ParamArray marks the logical array type, e.g. "string" on a list of chars.
	ParamArray = "__array__"

	ArrayString     = "string"
	ArrayChar       = "char"
	ArrayBytestring = "bytestring"
	ArrayByte       = "byte"
)

// Parameters are free-form annotations carried by nodes.
type Parameters map[string]string

// Get returns the value for key, or "" when absent.
func (p Parameters) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Clone returns a copy of p; nil stays nil.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Equal reports whether two parameter maps hold the same entries.
func (p Parameters) Equal(other Parameters) bool {
	return maps.Equal(p, other)
}

// IsString reports whether n is a list of characters or bytes.
func IsString(n Node) bool {
	switch n.Parameters().Get(ParamArray) {
	case ArrayString, ArrayBytestring:
		return true
	default:
		return false
	}
}

// IsList reports whether n is a Regular, ListOffset or List node.
func IsList(n Node) bool {
	switch n.Kind() {
	case KindRegular, KindListOffset, KindList:
		return true
	default:
		return false
	}
}

// IsOption reports whether n can represent missing values.
func IsOption(n Node) bool {
	switch n.Kind() {
	case KindIndexedOption, KindByteMasked, KindBitMasked, KindUnmasked:
		return true
	default:
		return false
	}
}

// Content returns the single child of a list, indexed or option node, or
// nil for other variants.
func Content(n Node) Node {
	switch v := n.(type) {
	case *Regular:
		return v.content
	case *ListOffset:
		return v.content
	case *List:
		return v.content
	case *Indexed:
		return v.content
	case *IndexedOption:
		return v.content
	case *ByteMasked:
		return v.content
	case *BitMasked:
		return v.content
	case *Unmasked:
		return v.content
	default:
		return nil
	}
}

// Children returns the direct children of n in order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Record:
		return append([]Node(nil), v.contents...)
	case *Union:
		return append([]Node(nil), v.contents...)
	case *Numeric:
		return nil
	default:
		return []Node{Content(n)}
	}
}

// requireIndex checks that an index-like buffer has an integer dtype.
func requireIndex(op, name string, b *buffer.Buffer) error {
	if b == nil {
		return errs.Structural(op, name+" buffer is nil")
	}
	if !b.DType().IsInteger() {
		return errs.Structural(op, name+" buffer must be integer, got "+b.DType().String())
	}
	if b.NDim() != 1 {
		return errs.Structural(op, name+" buffer must be one-dimensional")
	}
	return nil
}

func requireContent(op string, content Node) error {
	if content == nil {
		return errs.Structural(op, "content is nil")
	}
	return nil
}
