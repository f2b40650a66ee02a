package document

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Stop is one caret position of a paragraph with its display column.
type Stop struct {
	Pos Position
	Col int
}

// Width is the display width of text as rendered on a surface. Cursor
// anchors take no columns.
func Width(text string) int {
	return ansi.StringWidth(strings.ReplaceAll(text, CursorAnchor, ""))
}

// Stops enumerates every caret position of a paragraph in reading order.
// Mention tokens are atomic: there are stops before and after them but none
// inside their label.
func Stops(para *Node) []Stop {
	var stops []Stop
	col := 0
	var visit func(n *Node)
	visit = func(n *Node) {
		for i, child := range n.Children() {
			stops = append(stops, Stop{Pos: Position{Node: n, Offset: i}, Col: col})
			switch {
			case child.IsText():
				runes := []rune(child.Text())
				base := col
				for off := 0; off <= len(runes); off++ {
					stops = append(stops, Stop{Pos: Position{Node: child, Offset: off}, Col: base + Width(string(runes[:off]))})
				}
				col = base + Width(child.Text())
			case child.IsMention():
				col += Width(child.Label())
			case child.Inert:
			default:
				visit(child)
			}
		}
		stops = append(stops, Stop{Pos: Position{Node: n, Offset: len(n.Children())}, Col: col})
	}
	visit(para)
	return stops
}

// ColumnOf returns the display column of p within its paragraph stops, or -1.
func ColumnOf(stops []Stop, p Position) int {
	for _, stop := range stops {
		if stop.Pos == p {
			return stop.Col
		}
	}
	return -1
}

// AtColumn returns the preferred caret position for a column: the last text
// stop at that column, else the last stop of any kind.
func AtColumn(stops []Stop, col int) (Position, bool) {
	var best Position
	found, text := false, false
	for _, stop := range stops {
		if stop.Col != col {
			continue
		}
		if stop.Pos.Node.IsText() {
			best, found, text = stop.Pos, true, true
			continue
		}
		if !text {
			best, found = stop.Pos, true
		}
	}
	return best, found
}

// LineWidth returns the display width of a paragraph.
func LineWidth(stops []Stop) int {
	if len(stops) == 0 {
		return 0
	}
	return stops[len(stops)-1].Col
}
