package layout

import (
	"errors"
	"strconv"
)

// WalkFunc is called for every node visited by Walk. path holds the record
// field names and union alternatives leading to the node.
// Return a non-nil error to stop the walk.
type WalkFunc func(n Node, path []string) error

// errStopWalk ends a walk early without reporting an error.
var errStopWalk = errors.New("stop walk")

// Walk performs a pre-order traversal of the tree rooted at root.
func Walk(root Node, fn WalkFunc) error {
	err := walk(root, nil, fn)
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

func walk(n Node, path []string, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	if err := fn(n, path); err != nil {
		return err
	}
	switch v := n.(type) {
	case *Record:
		fields := v.Fields()
		for i, c := range v.contents {
			if err := walk(c, appendPath(path, fields[i]), fn); err != nil {
				return err
			}
		}
	case *Union:
		for t, c := range v.contents {
			if err := walk(c, appendPath(path, "#"+strconv.Itoa(t)), fn); err != nil {
				return err
			}
		}
	default:
		if c := Content(n); c != nil {
			return walk(c, path, fn)
		}
	}
	return nil
}

func appendPath(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

// FindAll returns every node matching the predicate in pre-order.
func FindAll(root Node, predicate func(n Node) bool) []Node {
	var result []Node

	//nolint:errcheck // the callback never fails
	Walk(root, func(n Node, _ []string) error {
		if predicate(n) {
			result = append(result, n)
		}
		return nil
	})

	return result
}

// FindFirst returns the first node matching the predicate, or nil.
func FindFirst(root Node, predicate func(n Node) bool) Node {
	var found Node

	//nolint:errcheck // errStopWalk is swallowed by Walk
	Walk(root, func(n Node, _ []string) error {
		if predicate(n) {
			found = n
			return errStopWalk
		}
		return nil
	})

	return found
}

// Leaves returns the Numeric nodes of the tree, treating strings as leaves
// of their own: their character content is not descended into.
func Leaves(root Node) []Node {
	var out []Node
	var visit func(n Node)
	visit = func(n Node) {
		switch v := n.(type) {
		case *Numeric:
			out = append(out, v)
		case *Record:
			for _, c := range v.contents {
				visit(c)
			}
		case *Union:
			for _, c := range v.contents {
				visit(c)
			}
		default:
			if IsString(n) {
				out = append(out, n)
				return
			}
			visit(Content(n))
		}
	}
	visit(root)
	return out
}
