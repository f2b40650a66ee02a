package document

// Default editing behaviour of the surface: what happens to a keypress that
// nothing else claims.

// InsertText types text at the cursor, replacing a single-node selection.
func (d *Document) InsertText(text string) {
	if text == "" {
		return
	}
	d.collapseSelection()
	p := d.Cursor()
	if !p.Valid() || !d.Contains(p.Node) {
		return
	}
	if p.Node.IsText() {
		runes := []rune(p.Node.Text())
		insert := []rune(text)
		p.Node.SetText(string(runes[:p.Offset]) + text + string(runes[p.Offset:]))
		d.SetCursor(Position{Node: p.Node, Offset: p.Offset + len(insert)})
		return
	}
	p = Canonical(p)
	if p.Node.IsText() {
		d.SetCursor(p)
		d.InsertText(text)
		return
	}
	node := NewText(text)
	if p.Node.Kind == KindMention {
		p = After(p.Node)
	}
	p.Node.InsertAt(p.Offset, node)
	d.SetCursor(Position{Node: node, Offset: node.RuneLen()})
}

// DeleteBackward removes the rune or atomic token before the cursor, merging
// paragraphs at a paragraph start.
func (d *Document) DeleteBackward() {
	sel := d.Selection()
	if !sel.Collapsed() {
		d.collapseSelection()
		return
	}
	p := d.Cursor()
	if !p.Valid() || !d.Contains(p.Node) {
		return
	}
	if p.Node.IsText() && p.Offset > 0 {
		runes := []rune(p.Node.Text())
		p.Node.SetText(string(runes[:p.Offset-1]) + string(runes[p.Offset:]))
		d.SetCursor(Position{Node: p.Node, Offset: p.Offset - 1})
		return
	}

	prev, parent := d.nodeBefore(p)
	for prev != nil && prev.IsText() && prev.RuneLen() == 0 {
		next := prev.PrevSibling()
		prev.Remove()
		prev = next
	}
	switch {
	case prev == nil:
		d.mergeWithPreviousParagraph(parent)
	case prev.IsText():
		runes := []rune(prev.Text())
		prev.SetText(string(runes[:len(runes)-1]))
		d.SetCursor(Position{Node: prev, Offset: len(runes) - 1})
	case prev.IsMention():
		at := Before(prev)
		prev.Remove()
		d.SetCursor(Canonical(at))
	default:
		if text, blocked := prev.LastTextDescendant(); text != nil && !blocked && text.RuneLen() > 0 {
			runes := []rune(text.Text())
			text.SetText(string(runes[:len(runes)-1]))
			d.SetCursor(Position{Node: text, Offset: len(runes) - 1})
		}
	}
}

// SplitParagraph breaks the paragraph at the cursor.
func (d *Document) SplitParagraph() {
	d.collapseSelection()
	p := d.Cursor()
	para := d.ParagraphOf(p.Node)
	if para == nil {
		return
	}
	next := NewElement(TagParagraph)
	para.Parent().InsertAfter(next, para)

	var moveFrom *Node
	switch {
	case p.Node.IsText():
		runes := []rune(p.Node.Text())
		right := NewText(string(runes[p.Offset:]))
		p.Node.SetText(string(runes[:p.Offset]))
		p.Node.Parent().InsertAfter(right, p.Node)
		moveFrom = right
	case p.Node == para:
		moveFrom = para.Child(p.Offset)
	default:
		moveFrom = p.Node.Child(p.Offset)
	}
	for cur := moveFrom; cur != nil; {
		following := cur.NextSibling()
		next.AppendChild(cur)
		cur = following
	}
	first := next.FirstChild()
	if !first.IsText() {
		first = NewText("")
		next.InsertAt(0, first)
	}
	d.SetCursor(Position{Node: first, Offset: 0})
}

// MoveLeft moves the cursor one stop left, into the previous paragraph at a
// paragraph start.
func (d *Document) MoveLeft() {
	d.moveHorizontal(-1)
}

// MoveRight moves the cursor one stop right.
func (d *Document) MoveRight() {
	d.moveHorizontal(1)
}

// MoveLineStart puts the cursor at the start of its paragraph.
func (d *Document) MoveLineStart() {
	if para := d.ParagraphOf(d.Cursor().Node); para != nil {
		if pos, ok := AtColumn(Stops(para), 0); ok {
			d.SetCursor(pos)
		}
	}
}

// MoveLineEnd puts the cursor at the end of its paragraph.
func (d *Document) MoveLineEnd() {
	if para := d.ParagraphOf(d.Cursor().Node); para != nil {
		stops := Stops(para)
		if pos, ok := AtColumn(stops, LineWidth(stops)); ok {
			d.SetCursor(pos)
		}
	}
}

// MoveVertical moves the cursor to the same column of an adjacent paragraph.
func (d *Document) MoveVertical(delta int) {
	p := d.Cursor()
	para := d.ParagraphOf(p.Node)
	if para == nil {
		return
	}
	col := ColumnOf(Stops(para), p)
	target := para.Parent().Child(para.Index() + delta)
	if target == nil {
		return
	}
	stops := Stops(target)
	if col > LineWidth(stops) {
		col = LineWidth(stops)
	}
	for c := col; c >= 0; c-- {
		if pos, ok := AtColumn(stops, c); ok {
			d.SetCursor(pos)
			return
		}
	}
}

func (d *Document) moveHorizontal(dir int) {
	d.collapseSelection()
	p := d.Cursor()
	para := d.ParagraphOf(p.Node)
	if para == nil {
		return
	}
	stops := Stops(para)
	col := ColumnOf(stops, p)
	best := -1
	for _, stop := range stops {
		if dir < 0 && stop.Col < col && stop.Col > best {
			best = stop.Col
		}
		if dir > 0 && stop.Col > col && (best == -1 || stop.Col < best) {
			best = stop.Col
		}
	}
	if best >= 0 {
		if pos, ok := AtColumn(stops, best); ok {
			d.SetCursor(pos)
		}
		return
	}
	sibling := para.Parent().Child(para.Index() + dir)
	if sibling == nil {
		return
	}
	siblingStops := Stops(sibling)
	target := 0
	if dir < 0 {
		target = LineWidth(siblingStops)
	}
	if pos, ok := AtColumn(siblingStops, target); ok {
		d.SetCursor(pos)
	}
}

func (d *Document) collapseSelection() {
	sel := d.Selection()
	if sel.Collapsed() {
		return
	}
	if sel.SameNode() {
		start := sel.Start
		if start.Offset > sel.End.Offset {
			start = sel.End
		}
		if err := d.DeleteContents(sel); err == nil {
			d.SetCursor(start)
			return
		}
	}
	d.SetCursor(sel.End)
}

// nodeBefore returns the sibling immediately before p and the node p lives in.
func (d *Document) nodeBefore(p Position) (*Node, *Node) {
	switch p.Node.Kind {
	case KindText:
		return p.Node.PrevSibling(), p.Node.Parent()
	case KindElement:
		return p.Node.Child(p.Offset - 1), p.Node
	default:
		return p.Node.PrevSibling(), p.Node.Parent()
	}
}

func (d *Document) mergeWithPreviousParagraph(container *Node) {
	para := d.ParagraphOf(container)
	if para == nil || container != para {
		return
	}
	prevPara := para.PrevSibling()
	if prevPara == nil {
		return
	}
	joint := Position{Node: prevPara, Offset: len(prevPara.Children())}
	for _, child := range append([]*Node(nil), para.Children()...) {
		prevPara.AppendChild(child)
	}
	para.Remove()
	d.SetCursor(Canonical(joint))
}
