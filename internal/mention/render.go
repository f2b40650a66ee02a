package mention

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ItemZonePrefix prefixes the zone ID of each rendered dropdown row.
const ItemZonePrefix = "mention-item-"

// ItemZone returns the zone ID of row i.
func ItemZone(i int) string {
	return ItemZonePrefix + strconv.Itoa(i)
}

// ParseItemZone extracts the row index from a zone ID.
func ParseItemZone(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, ItemZonePrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return i, true
}

// DropdownStyle styles the rendered dropdown.
type DropdownStyle struct {
	Frame    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Detail   lipgloss.Style
}

// DefaultDropdownStyle is a bordered list with the selection in bold.
func DefaultDropdownStyle() DropdownStyle {
	return DropdownStyle{
		Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
		Detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// Render draws the dropdown rows from the document's dropdown element so
// what is shown is always what the tree holds. mark wraps each row for
// pointer hit-testing; nil leaves rows unmarked. Rows are cut to the metric
// width and the list to the metric height.
func (e *Editor) Render(style DropdownStyle, mark func(id, s string) string) string {
	if !e.Visible() {
		return ""
	}
	n := e.ensureDropdown()
	if n.Attr("display") != "block" {
		return ""
	}

	m := e.opts.Metrics
	inner := m.Width - style.Frame.GetHorizontalFrameSize()
	rows := m.Height - style.Frame.GetVerticalFrameSize()
	if inner <= 0 {
		inner = m.Width
	}

	items := n.Children()
	first := 0
	if rows > 0 && len(items) > rows {
		// keep the selection in view
		if sel := e.session.SelectedIndex; sel >= rows {
			first = sel - rows + 1
		}
		items = items[first : first+rows]
	}

	lines := make([]string, 0, len(items))
	for off, item := range items {
		i := first + off
		prefix := "  "
		rowStyle := style.Item
		if item.Attr("selected") == "true" {
			prefix = "> "
			rowStyle = style.Selected
		}
		label := ""
		if text := item.FirstChild(); text != nil {
			label = text.Text()
		}
		line := prefix + rowStyle.Render(label)
		if detail := item.Attr("detail"); detail != "" {
			line += " " + style.Detail.Render("<"+detail+">")
		}
		line = ansi.Truncate(line, inner, "…")
		if mark != nil {
			line = mark(ItemZone(i), line)
		}
		lines = append(lines, line)
	}
	return style.Frame.Render(strings.Join(lines, "\n"))
}
