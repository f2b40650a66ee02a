package document

import "errors"

var (
	ErrCrossNodeRange  = errors.New("range spans more than one node")
	ErrInvalidPosition = errors.New("position is not inside the document")
)

// DeleteContents removes what a single-node range covers: runes of a text
// node or children of an element. The selection is not touched.
func (d *Document) DeleteContents(r Range) error {
	if !r.SameNode() {
		return ErrCrossNodeRange
	}
	if !r.Start.Valid() || !r.End.Valid() || !d.Contains(r.Start.Node) {
		return ErrInvalidPosition
	}
	start, end := r.Start.Offset, r.End.Offset
	if start > end {
		start, end = end, start
	}
	node := r.Start.Node
	if node.IsText() {
		runes := []rune(node.Text())
		node.SetText(string(runes[:start]) + string(runes[end:]))
		return nil
	}
	for i := end - 1; i >= start; i-- {
		if child := node.Child(i); child != nil {
			child.Remove()
		}
	}
	return nil
}

// InsertNode places n at p. Inside a text node the text is split around n;
// empty halves are dropped. It returns the position right after n.
func (d *Document) InsertNode(p Position, n *Node) (Position, error) {
	if !p.Valid() || !d.Contains(p.Node) {
		return Position{}, ErrInvalidPosition
	}
	switch p.Node.Kind {
	case KindElement:
		p.Node.InsertAt(p.Offset, n)
	case KindText:
		target := p.Node
		parent := target.Parent()
		if parent == nil {
			return Position{}, ErrInvalidPosition
		}
		runes := []rune(target.Text())
		left, right := string(runes[:p.Offset]), string(runes[p.Offset:])
		target.SetText(left)
		parent.InsertAfter(n, target)
		if right != "" {
			parent.InsertAfter(NewText(right), n)
		}
		if left == "" {
			target.Remove()
		}
	default:
		return Position{}, ErrInvalidPosition
	}
	return After(n), nil
}

// Canonical moves an element position into an adjacent text node when one
// exists, preferring the end of the preceding text.
func Canonical(p Position) Position {
	if p.Node == nil || p.Node.Kind != KindElement {
		return p
	}
	if prev := p.Node.Child(p.Offset - 1); prev.IsText() {
		return Position{Node: prev, Offset: prev.RuneLen()}
	}
	if next := p.Node.Child(p.Offset); next.IsText() {
		return Position{Node: next, Offset: 0}
	}
	return p
}
