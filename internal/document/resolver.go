package document

// Resolver maps a cursor position to the text content that precedes it.
// The returned position is a text node and the offset up to which its text
// counts as "before the cursor".
type Resolver interface {
	PrecedingText(p Position) (Position, bool)
}

// ResolverFor picks the resolver matching the kind of node p sits in.
func ResolverFor(p Position) Resolver {
	if p.Node.IsText() {
		return textResolver{}
	}
	return structuralResolver{}
}

// ResolveText resolves p with the matching resolver.
func ResolveText(p Position) (Position, bool) {
	if !p.Valid() {
		return Position{}, false
	}
	return ResolverFor(p).PrecedingText(p)
}

type textResolver struct{}

func (textResolver) PrecedingText(p Position) (Position, bool) {
	if !p.Node.IsText() {
		return Position{}, false
	}
	return p, true
}

// structuralResolver handles cursors at element boundaries: it walks the
// children before the offset, newest first, and takes the nearest text,
// descending into elements. Element boundaries contribute no characters;
// an opaque node (mention token, inert element) ends the walk.
type structuralResolver struct{}

func (structuralResolver) PrecedingText(p Position) (Position, bool) {
	node, offset := p.Node, p.Offset
	if node.Kind == KindMention {
		if node.Parent() == nil {
			return Position{}, false
		}
		node, offset = node.Parent(), node.Index()
	}
	for i := offset - 1; i >= 0; i-- {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.IsText() {
			return Position{Node: child, Offset: child.RuneLen()}, true
		}
		if child.Opaque() {
			return Position{}, false
		}
		text, blocked := child.LastTextDescendant()
		if blocked {
			return Position{}, false
		}
		if text != nil {
			return Position{Node: text, Offset: text.RuneLen()}, true
		}
	}
	return Position{}, false
}
