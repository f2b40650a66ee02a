package mention

import (
	"strings"

	"github.com/adamavenir/whorl/internal/document"
)

// adjacentMention finds the token a backspace at p would hit: the sibling
// right before the cursor, or the sibling before the token's trailing
// anchor when the cursor sits just behind that anchor. anchor is the text
// node holding the anchor, if any.
func adjacentMention(p document.Position) (token, anchor *document.Node) {
	if !p.Valid() {
		return nil, nil
	}
	switch {
	case p.Node.IsText():
		before := string([]rune(p.Node.Text())[:p.Offset])
		if before != "" && before != document.CursorAnchor {
			return nil, nil
		}
		prev := p.Node.PrevSibling()
		if !prev.IsMention() {
			return nil, nil
		}
		if before == document.CursorAnchor {
			return prev, p.Node
		}
		return prev, nil
	case p.Node.IsMention():
		return nil, nil
	}

	prev := p.Node.Child(p.Offset - 1)
	if prev.IsMention() {
		return prev, nil
	}
	if prev.IsAnchor() && prev.PrevSibling().IsMention() {
		return prev.PrevSibling(), prev
	}
	return nil, nil
}

// Backspace shrinks the mention token before the cursor by its last word,
// or removes it with its anchor when one word is left. It reports whether a
// token was adjacent; false means ordinary backspace applies.
func (e *Editor) Backspace() bool {
	sel := e.doc.Selection()
	if !sel.Collapsed() {
		return false
	}
	token, anchor := adjacentMention(sel.End)
	if token == nil {
		return false
	}

	words := strings.Fields(token.Name)
	if len(words) > 1 {
		token.Name = strings.Join(words[:len(words)-1], " ")
		return true
	}

	if anchor == nil {
		anchor = token.NextSibling()
	}
	removeAnchor(anchor)

	var cursor document.Position
	switch prev := token.PrevSibling(); {
	case prev.IsText():
		cursor = document.Position{Node: prev, Offset: prev.RuneLen()}
	case prev != nil:
		cursor = document.After(prev)
	default:
		cursor = document.Position{Node: token.Parent(), Offset: 0}
	}
	parent := token.Parent()
	token.Remove()
	if cursor.Node == parent {
		cursor.Offset = clampOffset(cursor.Offset, parent.Len())
	}
	e.doc.SetCursor(document.Canonical(cursor))
	return true
}

// removeAnchor drops a trailing anchor: the whole node when it holds only
// the anchor, otherwise just its leading placeholder.
func removeAnchor(n *document.Node) {
	if !n.IsText() {
		return
	}
	if n.IsAnchor() {
		n.Remove()
		return
	}
	if rest, ok := strings.CutPrefix(n.Text(), document.CursorAnchor); ok {
		n.SetText(rest)
	}
}

func clampOffset(v, hi int) int {
	if v > hi {
		return hi
	}
	if v < 0 {
		return 0
	}
	return v
}
