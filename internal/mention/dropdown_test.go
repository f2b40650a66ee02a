package mention

import (
	"strings"
	"testing"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
)

type fakeLayout struct {
	rangeRect  document.Rect
	cursorRect document.Rect
	width      int
	height     int
}

func (f fakeLayout) RangeRect(document.Range) document.Rect     { return f.rangeRect }
func (f fakeLayout) CursorRect(document.Position) document.Rect { return f.cursorRect }
func (f fakeLayout) Viewport() (int, int)                       { return f.width, f.height }

func TestPlace(t *testing.T) {
	tests := []struct {
		name   string
		layout fakeLayout
		want   Placement
	}{
		{
			name:   "below the trigger",
			layout: fakeLayout{rangeRect: document.Rect{Left: 100, Top: 40, Width: 20, Height: 16}, width: 1000, height: 800},
			want:   Placement{Top: 58, Left: 100},
		},
		{
			name:   "cursor rect when range has no geometry",
			layout: fakeLayout{cursorRect: document.Rect{Left: 30, Top: 40, Height: 16}, width: 1000, height: 800},
			want:   Placement{Top: 58, Left: 30},
		},
		{
			name:   "fixed fallback",
			layout: fakeLayout{width: 1000, height: 800},
			want:   Placement{Top: 50, Left: 20},
		},
		{
			name:   "clamped at right edge",
			layout: fakeLayout{rangeRect: document.Rect{Left: 900, Top: 40, Width: 20, Height: 16}, width: 1000, height: 800},
			want:   Placement{Top: 58, Left: 740},
		},
		{
			name:   "flipped above near the bottom",
			layout: fakeLayout{rangeRect: document.Rect{Left: 100, Top: 700, Width: 20, Height: 16}, width: 1000, height: 800},
			want:   Placement{Top: 490, Left: 100},
		},
		{
			name:   "kept inside the left margin",
			layout: fakeLayout{rangeRect: document.Rect{Left: 2, Top: 40, Width: 20, Height: 16}, width: 1000, height: 800},
			want:   Placement{Top: 58, Left: 10},
		},
		{
			name:   "tiny viewport",
			layout: fakeLayout{rangeRect: document.Rect{Left: 50, Top: 100, Width: 20, Height: 16}, width: 200, height: 150},
			want:   Placement{Top: 10, Left: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := place(tt.layout, document.Range{}, DefaultMetrics())
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPositionWithoutLayout(t *testing.T) {
	e := startSession(t, "@", Options{}, ada)
	if got := e.Position(); got != (Placement{Top: 50, Left: 20}) {
		t.Fatalf("expected fixed fallback, got %+v", got)
	}
}

func TestPositionWithGridLayout(t *testing.T) {
	doc := document.FromText("first\nsay @ad")
	metrics := Metrics{Width: 30, Height: 6, Margin: 1, Gap: 0, FallbackLeft: 1, FallbackTop: 1}
	layout := document.GridLayout{Doc: doc, OriginX: 2, OriginY: 3, ViewWidth: 80, ViewHeight: 24}
	e := NewEditor(doc, Options{Layout: layout, Metrics: metrics})
	req := e.HandleInput()
	e.ApplyFetch(FetchResult{Generation: req.Generation, Candidates: []types.Candidate{ada, bob}})

	// trigger at column 4 of row 1
	if got := e.Position(); got != (Placement{Top: 5, Left: 6}) {
		t.Fatalf("unexpected placement %+v", got)
	}
	n := e.Dropdown()
	if n.Attr("top") != "5" || n.Attr("left") != "6" {
		t.Fatalf("expected placement written to the dropdown, got top=%s left=%s", n.Attr("top"), n.Attr("left"))
	}
}

func TestRender(t *testing.T) {
	e := startSession(t, "@", Options{Metrics: Metrics{Width: 60, Height: 10, Margin: 1}}, ada, bob)
	e.Move(1)

	var marked []string
	out := e.Render(DefaultDropdownStyle(), func(id, s string) string {
		marked = append(marked, id)
		return s
	})
	if !strings.Contains(out, "Ada Lovelace") || !strings.Contains(out, "bob@example.com") {
		t.Fatalf("expected both candidates rendered:\n%s", out)
	}
	if !strings.Contains(out, "<ada@example.com>") {
		t.Fatalf("expected email detail for named candidate:\n%s", out)
	}
	if len(marked) != 2 || marked[1] != ItemZone(1) {
		t.Fatalf("unexpected zones %v", marked)
	}
	if i, ok := ParseItemZone(marked[1]); !ok || i != 1 {
		t.Fatalf("expected zone to parse back to 1, got %d %v", i, ok)
	}

	e.Cancel()
	if e.Render(DefaultDropdownStyle(), nil) != "" {
		t.Fatalf("expected nothing rendered when hidden")
	}
}
