package broadcast

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

// Kernel computes one flat output from flat inputs of equal length.
type Kernel func(inputs []*buffer.Buffer) (*buffer.Buffer, error)

// Backend resolves named elementwise operations to kernels.
type Backend interface {
	Kernel(name string) (Kernel, error)
}

// Apply broadcasts the operands and runs kernel once per aligned leaf,
// reassembling the outputs into the common nested shape.
func Apply(kernel Kernel, operands ...Operand) (layout.Node, error) {
	aligned, err := Broadcast(operands...)
	if err != nil {
		return nil, err
	}
	return zip(aligned, kernel)
}

// ApplyOp is Apply with the kernel looked up by name on backend.
func ApplyOp(backend Backend, name string, operands ...Operand) (layout.Node, error) {
	kernel, err := backend.Kernel(name)
	if err != nil {
		return nil, err
	}
	out, err := Apply(kernel, operands...)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", name, err)
	}
	return out, nil
}

// zip walks aligned nodes in lockstep and calls kernel at the leaves.
func zip(nodes []layout.Node, kernel Kernel) (layout.Node, error) {
	switch template := nodes[0].(type) {
	case *layout.Numeric:
		inputs := make([]*buffer.Buffer, len(nodes))
		for i, n := range nodes {
			leaf, ok := n.(*layout.Numeric)
			if !ok {
				return nil, errs.Invalid(op, "cannot apply a numeric kernel to "+describe(n))
			}
			inputs[i] = leaf.Data()
		}
		out, err := kernel(inputs)
		if err != nil {
			return nil, err
		}
		if out.FlatLen() != template.Data().FlatLen() {
			return nil, errs.Shape(op, fmt.Sprintf("kernel returned %d values for %d inputs",
				out.FlatLen(), template.Data().FlatLen()))
		}
		return layout.NewNumeric(out, nil)
	case *layout.Record:
		contents := make([]layout.Node, template.NumFields())
		for f := range contents {
			children := make([]layout.Node, len(nodes))
			for i, n := range nodes {
				children[i] = n.(*layout.Record).Contents()[f]
			}
			out, err := zip(children, kernel)
			if err != nil {
				return nil, withPath(err, template.Fields()[f])
			}
			contents[f] = out
		}
		var names []string
		if !template.IsTuple() {
			names = template.Fields()
		}
		return layout.NewRecord(contents, names, template.Length(), nil)
	case *layout.Union:
		contents := make([]layout.Node, template.NumContents())
		for t := range contents {
			children := make([]layout.Node, len(nodes))
			for i, n := range nodes {
				children[i] = n.(*layout.Union).Alternative(t)
			}
			out, err := zip(children, kernel)
			if err != nil {
				return nil, err
			}
			contents[t] = out
		}
		return layout.NewUnion(template.Tags(), template.Index(), contents, nil)
	}

	if layout.IsString(nodes[0]) {
		return nil, errs.Invalid(op, "cannot apply a numeric kernel to strings")
	}
	children := make([]layout.Node, len(nodes))
	for i, n := range nodes {
		children[i] = layout.Content(n)
	}
	out, err := zip(children, kernel)
	if err != nil {
		return nil, err
	}
	return layout.WithContent(layout.WithParameters(nodes[0], nil), out), nil
}

func describe(n layout.Node) string {
	if layout.IsString(n) {
		return "strings"
	}
	return n.Kind().String()
}
