package document

import "strings"

const (
	TagRoot      = "html"
	TagBody      = "body"
	TagParagraph = "p"
)

// Document is one editable surface: a root holding the body plus any
// overlay elements, and a single selection.
type Document struct {
	root *Node
	sel  Range
}

// New creates a document with one empty paragraph and the cursor in it.
func New() *Document {
	d := &Document{}
	d.ReplaceContent()
	return d
}

// FromText creates a document with one paragraph per line of text and the
// cursor at the end.
func FromText(text string) *Document {
	d := &Document{}
	d.ReplaceContent(strings.Split(text, "\n")...)
	return d
}

// ReplaceContent discards the whole tree, overlays included, and rebuilds the
// body from paragraphs. This is what select-all-and-type does to a surface.
func (d *Document) ReplaceContent(paragraphs ...string) {
	if len(paragraphs) == 0 {
		paragraphs = []string{""}
	}
	body := NewElement(TagBody)
	var last *Node
	for _, para := range paragraphs {
		last = NewText(para)
		body.AppendChild(NewElement(TagParagraph, last))
	}
	d.root = NewElement(TagRoot, body)
	d.sel = Collapse(Position{Node: last, Offset: last.RuneLen()})
}

// Root returns the root element.
func (d *Document) Root() *Node {
	return d.root
}

// Body returns the body element, or nil if it was removed.
func (d *Document) Body() *Node {
	for _, child := range d.root.Children() {
		if child.Kind == KindElement && child.Tag == TagBody {
			return child
		}
	}
	return nil
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *Node) bool {
	return n != nil && d.root.Contains(n)
}

// FindByID returns the first element with the given ID.
func (d *Document) FindByID(id string) *Node {
	var found *Node
	d.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Selection returns the current selection.
func (d *Document) Selection() Range {
	return d.sel
}

// Select replaces the selection.
func (d *Document) Select(r Range) {
	d.sel = r
}

// SetCursor collapses the selection at p.
func (d *Document) SetCursor(p Position) {
	d.sel = Collapse(p)
}

// Cursor returns the focus end of the selection.
func (d *Document) Cursor() Position {
	return d.sel.End
}

// Mentions returns every mention token in document order.
func (d *Document) Mentions() []*Node {
	var out []*Node
	d.root.Walk(func(n *Node) bool {
		if n.IsMention() {
			out = append(out, n)
		}
		return !n.Inert
	})
	return out
}

// PlainText renders the body as text: one line per paragraph, mentions as
// their labels, cursor anchors dropped.
func (d *Document) PlainText() string {
	body := d.Body()
	if body == nil {
		return ""
	}
	lines := make([]string, 0, len(body.Children()))
	for _, para := range body.Children() {
		lines = append(lines, InlineText(para))
	}
	return strings.Join(lines, "\n")
}

// InlineText flattens a node into its visible text.
func InlineText(n *Node) string {
	var b strings.Builder
	n.Walk(func(cur *Node) bool {
		switch {
		case cur.Inert:
			return false
		case cur.IsText():
			b.WriteString(strings.ReplaceAll(cur.Text(), CursorAnchor, ""))
		case cur.IsMention():
			b.WriteString(cur.Label())
		}
		return true
	})
	return b.String()
}

// ParagraphOf returns the body child containing n.
func (d *Document) ParagraphOf(n *Node) *Node {
	body := d.Body()
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Parent() == body {
			return cur
		}
	}
	return nil
}
