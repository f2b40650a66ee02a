package document

// Rect is a screen rectangle in surface units (pixels or terminal cells).
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Empty reports a rectangle with no geometry at all.
func (r Rect) Empty() bool {
	return r.Width == 0 && r.Height == 0
}

// Layout converts document positions to screen geometry.
type Layout interface {
	RangeRect(r Range) Rect
	CursorRect(p Position) Rect
	Viewport() (width, height int)
}

// GridLayout lays the body out one paragraph per row on a fixed cell grid,
// offset by an origin. Positions outside the body have no geometry.
type GridLayout struct {
	Doc        *Document
	OriginX    int
	OriginY    int
	ViewWidth  int
	ViewHeight int
	// ScrollTop is the first paragraph shown at OriginY.
	ScrollTop int
}

func (g GridLayout) Viewport() (int, int) {
	return g.ViewWidth, g.ViewHeight
}

func (g GridLayout) RangeRect(r Range) Rect {
	start, ok := g.cell(r.Start)
	if !ok {
		return Rect{}
	}
	end, ok := g.cell(r.End)
	if !ok || end.row != start.row {
		return Rect{}
	}
	left, right := start.col, end.col
	if left > right {
		left, right = right, left
	}
	if left == right {
		return Rect{}
	}
	return Rect{Left: g.OriginX + left, Top: g.OriginY + start.row, Width: right - left, Height: 1}
}

func (g GridLayout) CursorRect(p Position) Rect {
	c, ok := g.cell(p)
	if !ok {
		return Rect{}
	}
	return Rect{Left: g.OriginX + c.col, Top: g.OriginY + c.row, Width: 0, Height: 1}
}

type gridCell struct {
	row int
	col int
}

func (g GridLayout) cell(p Position) (gridCell, bool) {
	if g.Doc == nil || p.Node == nil {
		return gridCell{}, false
	}
	para := g.Doc.ParagraphOf(p.Node)
	if para == nil {
		return gridCell{}, false
	}
	col := ColumnOf(Stops(para), p)
	if col < 0 {
		return gridCell{}, false
	}
	return gridCell{row: para.Index() - g.ScrollTop, col: col}, true
}
