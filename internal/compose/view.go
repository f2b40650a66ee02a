package compose

import (
	"strings"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	dropdownZone = "mention-dropdown"
	subjectZone  = "subject"
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Bold(true)
	addressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	mentionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (m *Model) View() string {
	lines := make([]string, 0, m.height)
	lines = append(lines,
		m.headerLine("To", m.recipients.To),
		m.headerLine("Cc", m.recipients.Cc),
		m.headerLine("Bcc", m.recipients.Bcc),
		m.zoneManager.Mark(subjectZone, labelStyle.Render("Subject: ")+m.subject.View()),
		ruleStyle.Render(strings.Repeat("─", max(m.width, 1))),
	)
	lines = append(lines, m.bodyLines()...)
	lines = append(lines, statusStyle.Render(ansi.Truncate(m.statusLine(), m.width, "…")))
	out := strings.Join(lines, "\n")

	if dropdown := m.editor.Render(m.style, m.zoneManager.Mark); dropdown != "" {
		at := m.editor.Position()
		out = overlay(out, m.zoneManager.Mark(dropdownZone, dropdown), at.Left, at.Top)
	}
	return m.zoneManager.Scan(out)
}

func (m *Model) headerLine(label string, list []types.Recipient) string {
	names := make([]string, 0, len(list))
	for _, r := range list {
		names = append(names, formatRecipient(r))
	}
	line := labelStyle.Render(padRight(label+":", len("Subject: "))) + addressStyle.Render(strings.Join(names, ", "))
	return ansi.Truncate(line, m.width, "…")
}

func formatRecipient(r types.Recipient) string {
	if !r.IsStructured() {
		return r.Raw
	}
	return core.FormatRecipient(r.Name, r.Email)
}

// bodyLines draws the visible paragraphs, padded to the body height.
func (m *Model) bodyLines() []string {
	height := m.bodyHeight()
	lines := make([]string, 0, height)
	body := m.doc.Body()
	cursor := m.doc.Cursor()
	cursorPara := m.doc.ParagraphOf(cursor.Node)
	if body != nil {
		paras := body.Children()
		for i := m.scrollTop; i < len(paras) && len(lines) < height; i++ {
			para := paras[i]
			line := renderParagraph(para)
			if para == cursorPara && m.focus == focusBody {
				line = drawCursor(line, document.ColumnOf(document.Stops(para), cursor))
			}
			lines = append(lines, ansi.Truncate(line, m.width, "…"))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// renderParagraph draws text as is and mention tokens by label.
func renderParagraph(para *document.Node) string {
	var b strings.Builder
	para.Walk(func(n *document.Node) bool {
		switch {
		case n.Inert:
			return false
		case n.IsText():
			b.WriteString(strings.ReplaceAll(n.Text(), document.CursorAnchor, ""))
		case n.IsMention():
			b.WriteString(mentionStyle.Render(n.Label()))
		}
		return true
	})
	return b.String()
}

// drawCursor reverses the cell at col, or appends a block at line end.
func drawCursor(line string, col int) string {
	if col < 0 {
		return line
	}
	width := ansi.StringWidth(line)
	if col >= width {
		return line + strings.Repeat(" ", col-width) + cursorStyle.Render(" ")
	}
	before := ansi.Cut(line, 0, col)
	char := ansi.Strip(ansi.Cut(line, col, col+1))
	after := ansi.Cut(line, col+1, width)
	if char == "" {
		char = " "
	}
	return before + cursorStyle.Render(char) + after
}

// overlay draws fg over bg with its top-left cell at (x, y).
func overlay(bg, fg string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgWidth := 0
	for _, line := range fgLines {
		fgWidth = max(fgWidth, ansi.StringWidth(line))
	}
	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		if y+i < 0 {
			continue
		}
		bgLine := bgLines[y+i]
		bgWidth := ansi.StringWidth(bgLine)
		left := ansi.Cut(bgLine, 0, x)
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ""
		if bgWidth > x+fgWidth {
			right = ansi.Cut(bgLine, x+fgWidth, bgWidth)
		}
		fgLine := fgLines[i]
		if n := ansi.StringWidth(fgLine); n < fgWidth {
			fgLine += strings.Repeat(" ", fgWidth-n)
		}
		bgLines[y+i] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

func (m *Model) statusLine() string {
	hint := "ctrl+s save · ctrl+y copy · ctrl+c quit"
	if m.status == "" {
		return hint
	}
	return m.status + " · " + hint
}

func padRight(s string, width int) string {
	if n := len(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
