package document

// Position is a location in the tree: a rune offset inside a text node or a
// child index inside an element.
type Position struct {
	Node   *Node
	Offset int
}

// Valid reports whether the position points inside its node.
func (p Position) Valid() bool {
	return p.Node != nil && p.Offset >= 0 && p.Offset <= p.Node.Len()
}

// Before returns the position just before n in its parent.
func Before(n *Node) Position {
	return Position{Node: n.Parent(), Offset: n.Index()}
}

// After returns the position just after n in its parent.
func After(n *Node) Position {
	return Position{Node: n.Parent(), Offset: n.Index() + 1}
}

// Range is a span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Collapse returns an empty range at p.
func Collapse(p Position) Range {
	return Range{Start: p, End: p}
}

// Collapsed reports whether the range is a bare cursor.
func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// SameNode reports whether both ends sit in the same node.
func (r Range) SameNode() bool {
	return r.Start.Node != nil && r.Start.Node == r.End.Node
}

// Text returns the text covered by a range inside one text node.
func (r Range) Text() string {
	if !r.SameNode() || !r.Start.Node.IsText() {
		return ""
	}
	runes := []rune(r.Start.Node.Text())
	start, end := clamp(r.Start.Offset, 0, len(runes)), clamp(r.End.Offset, 0, len(runes))
	if start > end {
		return ""
	}
	return string(runes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
