// Package document models the editable rich-text surface the mention engine
// works on: a tree of element, text and atomic mention nodes with a single
// selection.
package document

import "unicode/utf8"

// Kind distinguishes node types.
type Kind int

const (
	KindText Kind = iota
	KindElement
	KindMention
)

// CursorAnchor is the zero-width placeholder inserted after a mention token
// so the cursor has a text position to occupy.
const CursorAnchor = "\u200B"

// Node is one node of the document tree.
type Node struct {
	Kind Kind
	Tag  string
	ID   string
	// Inert marks non-editable elements (the dropdown, for instance).
	Inert bool
	Attrs map[string]string

	text string

	// Mention token payload.
	Email   string
	Name    string
	Trigger string

	parent   *Node
	children []*Node
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, text: text}
}

// NewAnchor creates a zero-width cursor anchor text node.
func NewAnchor() *Node {
	return NewText(CursorAnchor)
}

// NewElement creates an element and appends the children.
func NewElement(tag string, children ...*Node) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

// NewMention creates an atomic mention token.
func NewMention(trigger, email, name string) *Node {
	return &Node{Kind: KindMention, Tag: "mention", Trigger: trigger, Email: email, Name: name}
}

// Label is the rendered text of a mention token: trigger followed by name.
func (n *Node) Label() string {
	if n.Kind != KindMention {
		return ""
	}
	return n.Trigger + n.Name
}

// Text returns the text of a text node.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the text of a text node.
func (n *Node) SetText(text string) {
	n.text = text
}

// RuneLen returns the rune count of a text node.
func (n *Node) RuneLen() int {
	return utf8.RuneCountInString(n.text)
}

// Len is the maximum offset of a position inside n: runes for text nodes,
// children for elements, zero for atomic tokens.
func (n *Node) Len() int {
	switch n.Kind {
	case KindText:
		return n.RuneLen()
	case KindElement:
		return len(n.children)
	default:
		return 0
	}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == KindText
}

// IsMention reports whether n is a mention token.
func (n *Node) IsMention() bool {
	return n != nil && n.Kind == KindMention
}

// IsAnchor reports whether n is a text node holding exactly the cursor anchor.
func (n *Node) IsAnchor() bool {
	return n.IsText() && n.text == CursorAnchor
}

// Opaque reports whether text lookups must treat n as a boundary.
func (n *Node) Opaque() bool {
	return n != nil && (n.Kind == KindMention || n.Inert)
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// SetAttr sets an attribute value.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[key] = value
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child slice. Callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	return n.Child(0)
}

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node {
	return n.Child(len(n.children) - 1)
}

// Index returns n's position among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, child := range n.parent.children {
		if child == n {
			return i
		}
	}
	return -1
}

// PrevSibling returns the previous sibling or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.Index() - 1)
}

// NextSibling returns the next sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	idx := n.Index()
	if idx < 0 {
		return nil
	}
	return n.parent.Child(idx + 1)
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) {
	n.InsertAt(len(n.children), child)
}

// InsertAt moves child to index i of n's children.
func (n *Node) InsertAt(i int, child *Node) {
	if child.parent == n && child.Index() < i {
		i--
	}
	child.Remove()
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// InsertBefore inserts child before ref; a nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) {
	if ref == nil || ref.parent != n {
		n.AppendChild(child)
		return
	}
	n.InsertAt(ref.Index(), child)
}

// InsertAfter inserts child after ref; a nil ref prepends.
func (n *Node) InsertAfter(child, ref *Node) {
	if ref == nil || ref.parent != n {
		n.InsertAt(0, child)
		return
	}
	n.InsertAt(ref.Index()+1, child)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	idx := n.Index()
	p := n.parent
	p.children = append(p.children[:idx], p.children[idx+1:]...)
	n.parent = nil
}

// RemoveChildren detaches every child.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// LastTextDescendant returns the last text node inside n, descending in
// reverse child order. blocked is set when an opaque node is met before any
// text.
func (n *Node) LastTextDescendant() (text *Node, blocked bool) {
	if n.IsText() {
		return n, false
	}
	if n.Opaque() {
		return nil, true
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		found, stop := n.children[i].LastTextDescendant()
		if found != nil || stop {
			return found, stop
		}
	}
	return nil, false
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}
