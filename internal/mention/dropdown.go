package mention

import (
	"strconv"

	"github.com/adamavenir/whorl/internal/document"
)

const (
	// DropdownID identifies the dropdown element in the document tree.
	DropdownID = "at-mention-dropdown"
	// ItemTag is the tag of one candidate row inside the dropdown.
	ItemTag = "at-mention-item"
)

// Metrics size the dropdown in surface units.
type Metrics struct {
	Width  int
	Height int
	// Margin is the minimum distance kept from the viewport edges.
	Margin int
	// Gap separates the dropdown from the trigger text below it.
	Gap          int
	FallbackLeft int
	FallbackTop  int
}

// DefaultMetrics are pixel values for a browser-sized surface.
func DefaultMetrics() Metrics {
	return Metrics{Width: 250, Height: 200, Margin: 10, Gap: 2, FallbackLeft: 20, FallbackTop: 50}
}

// Placement is the top-left corner of the dropdown.
type Placement struct {
	Top  int
	Left int
}

// Position computes where the dropdown goes: under the trigger range,
// flipped above it when it would run past the bottom of the viewport, and
// clamped to the viewport margins. Without geometry for the range it falls
// back to the cursor, then to a fixed point.
func (e *Editor) Position() Placement {
	m := e.opts.Metrics
	if e.opts.Layout == nil || e.session.Range == nil {
		return Placement{Top: m.FallbackTop, Left: m.FallbackLeft}
	}
	return place(e.opts.Layout, *e.session.Range, m)
}

func place(layout document.Layout, r document.Range, m Metrics) Placement {
	rect := layout.RangeRect(r)
	if rect.Empty() {
		rect = layout.CursorRect(r.End)
	}

	var top, left int
	if rect.Empty() {
		top, left = m.FallbackTop, m.FallbackLeft
	} else {
		top = rect.Bottom() + m.Gap
		left = rect.Left
	}

	vw, vh := layout.Viewport()
	left = max(left, m.Margin)
	if left+m.Width > vw {
		left = max(m.Margin, vw-m.Width-m.Margin)
	}
	if top+m.Height > vh {
		top = max(m.Margin, rect.Top-m.Height-m.Margin)
	}
	top = max(top, m.Margin)
	return Placement{Top: top, Left: left}
}

// Dropdown returns the dropdown element if it is attached to the document.
func (e *Editor) Dropdown() *document.Node {
	if e.dropdown != nil && e.doc.Contains(e.dropdown) {
		return e.dropdown
	}
	return nil
}

// ensureDropdown returns the attached dropdown, re-creating it when the
// surface replaced its content and took the old one with it.
func (e *Editor) ensureDropdown() *document.Node {
	if n := e.Dropdown(); n != nil {
		return n
	}
	if n := e.doc.FindByID(DropdownID); n != nil {
		e.dropdown = n
		return n
	}
	n := document.NewElement("div")
	n.ID = DropdownID
	n.Inert = true
	n.SetAttr("display", "none")
	e.doc.Root().AppendChild(n)
	e.dropdown = n
	return n
}

func (e *Editor) renderDropdown() {
	n := e.ensureDropdown()
	n.RemoveChildren()
	for i, c := range e.session.Candidates {
		item := document.NewElement(ItemTag, document.NewText(c.DisplayName()))
		item.Inert = true
		item.SetAttr("index", strconv.Itoa(i))
		item.SetAttr("email", c.Email)
		if c.Name != "" {
			item.SetAttr("detail", c.Email)
		}
		n.AppendChild(item)
	}
	pos := e.Position()
	n.SetAttr("top", strconv.Itoa(pos.Top))
	n.SetAttr("left", strconv.Itoa(pos.Left))
	n.SetAttr("display", "block")
	e.markSelected()
}

func (e *Editor) markSelected() {
	n := e.ensureDropdown()
	for i, item := range n.Children() {
		if i == e.session.SelectedIndex {
			item.SetAttr("selected", "true")
		} else {
			item.SetAttr("selected", "false")
		}
	}
}

func (e *Editor) hideDropdown() {
	n := e.Dropdown()
	if n == nil {
		return
	}
	n.RemoveChildren()
	n.SetAttr("display", "none")
}
