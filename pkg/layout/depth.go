package layout

// Depth returns the number of list levels below n, taking the minimum over
// record fields and union alternatives. A one-dimensional Numeric has depth
// 0; strings count as leaves.
func Depth(n Node) int {
	lo, _ := MinMaxDepth(n)
	return lo
}

// MinMaxDepth returns the shallowest and deepest list nesting below n.
// They differ only for records and unions whose branches disagree.
func MinMaxDepth(n Node) (int, int) {
	if IsString(n) {
		return 0, 0
	}
	switch v := n.(type) {
	case *Numeric:
		d := v.data.NDim() - 1
		return d, d
	case *Regular, *ListOffset, *List:
		lo, hi := MinMaxDepth(Content(n))
		return lo + 1, hi + 1
	case *Record:
		return minMaxOver(v.contents)
	case *Union:
		return minMaxOver(v.contents)
	default:
		return MinMaxDepth(Content(n))
	}
}

func minMaxOver(contents []Node) (int, int) {
	if len(contents) == 0 {
		return 0, 0
	}
	lo, hi := MinMaxDepth(contents[0])
	for _, c := range contents[1:] {
		l, h := MinMaxDepth(c)
		lo = min(lo, l)
		hi = max(hi, h)
	}
	return lo, hi
}

// IsBranching reports whether some record field or union alternative below
// n has a different depth from another.
func IsBranching(n Node) bool {
	lo, hi := MinMaxDepth(n)
	return lo != hi
}

// ResolveAxis turns a possibly negative axis into a non-negative level
// given the node's depth. -1 is the innermost level. ok is false when the
// axis is out of range.
func ResolveAxis(axis, depth int) (int, bool) {
	if axis < 0 {
		axis += depth + 1
	}
	if axis < 0 || axis > depth {
		return axis, false
	}
	return axis, true
}
