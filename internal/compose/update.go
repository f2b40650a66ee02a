package compose

import (
	"context"
	"fmt"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/mention"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

type fetchResultMsg struct {
	result mention.FetchResult
}

// settleMsg is delivered on the tick after a commit.
type settleMsg struct{}

type recipientsMsg struct {
	details types.ComposeDetails
	err     error
}

type savedMsg struct {
	err error
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.subject.Width = msg.Width - len("Subject: ") - 1
		m.syncLayout()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m, m.handleMouseMsg(msg)
	case fetchResultMsg:
		m.editor.ApplyFetch(msg.result)
		return m, nil
	case settleMsg:
		return m, m.handleSettle()
	case recipientsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("recipients: %v", msg.err)
			return m, nil
		}
		m.recipients = msg.details
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.status = "draft saved"
		}
		return m, nil
	default:
		if m.focus == focusSubject {
			var cmd tea.Cmd
			m.subject, cmd = m.subject.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.Close()
		return m, tea.Quit
	case tea.KeyCtrlS:
		return m, m.saveCmd()
	case tea.KeyCtrlY:
		if err := clipboard.WriteAll(m.doc.PlainText()); err != nil {
			m.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			m.status = "copied body"
		}
		return m, nil
	}

	if m.focus == focusSubject {
		switch msg.Type {
		case tea.KeyTab, tea.KeyEnter, tea.KeyDown, tea.KeyShiftTab:
			m.focusOn(focusBody)
			return m, nil
		}
		var cmd tea.Cmd
		m.subject, cmd = m.subject.Update(msg)
		return m, cmd
	}

	return m, m.dispatchKey(msg)
}

func (m *Model) focusOn(area focusArea) {
	m.focus = area
	if area == focusSubject {
		m.editor.Blur(false)
		m.subject.Focus()
		return
	}
	m.subject.Blur()
}

// dispatchKey runs one body keypress through the editor and, when the
// editor leaves it alone, through default editing.
func (m *Model) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	outcome, req := m.editor.HandleKey(keyFromTea(msg))
	switch outcome {
	case mention.Queued:
		return nil
	case mention.Handled:
		m.syncLayout()
		return tea.Batch(m.recipientCmd(req), m.settleCmd())
	}

	if msg.Type == tea.KeyShiftTab {
		m.focusOn(focusSubject)
		return nil
	}
	if !m.applyDefault(msg) {
		return nil
	}
	m.syncLayout()
	if req := m.editor.HandleInput(); req != nil {
		return m.fetchCmd(*req)
	}
	return nil
}

// applyDefault performs the surface's own editing for msg and reports
// whether the document text changed.
func (m *Model) applyDefault(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		m.doc.InsertText(string(msg.Runes))
		return true
	case tea.KeySpace:
		m.doc.InsertText(" ")
		return true
	case tea.KeyBackspace:
		m.doc.DeleteBackward()
		return true
	case tea.KeyEnter:
		m.doc.SplitParagraph()
		return true
	case tea.KeyLeft:
		m.doc.MoveLeft()
	case tea.KeyRight:
		m.doc.MoveRight()
	case tea.KeyUp:
		m.doc.MoveVertical(-1)
	case tea.KeyDown:
		m.doc.MoveVertical(1)
	case tea.KeyHome, tea.KeyCtrlA:
		m.doc.MoveLineStart()
	case tea.KeyEnd, tea.KeyCtrlE:
		m.doc.MoveLineEnd()
	}
	m.syncLayout()
	return false
}

func (m *Model) handleSettle() tea.Cmd {
	queued := m.editor.Settle()
	m.syncLayout()
	cmds := make([]tea.Cmd, 0, len(queued))
	for _, k := range queued {
		msg, ok := k.Host.(tea.KeyMsg)
		if !ok {
			continue
		}
		cmds = append(cmds, m.dispatchKey(msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	if m.editor.Visible() {
		if i, ok := m.itemAt(msg); ok {
			switch {
			case msg.Action == tea.MouseActionMotion:
				m.editor.Hover(i)
				return nil
			case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
				return m.selectItem(i)
			}
		}
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	m.editor.Blur(m.zoneManager.Get(dropdownZone).InBounds(msg))
	if m.zoneManager.Get(subjectZone).InBounds(msg) {
		m.focusOn(focusSubject)
		return nil
	}
	if p, ok := m.positionAt(msg.X, msg.Y); ok {
		m.focusOn(focusBody)
		m.doc.SetCursor(p)
		m.syncLayout()
	}
	return nil
}

func (m *Model) itemAt(msg tea.MouseMsg) (int, bool) {
	for i := range m.editor.Session().Candidates {
		if m.zoneManager.Get(mention.ItemZone(i)).InBounds(msg) {
			return i, true
		}
	}
	return 0, false
}

// selectItem commits the dropdown row i as a pointer press does.
func (m *Model) selectItem(i int) tea.Cmd {
	req, err := m.editor.PointerSelect(i)
	if err != nil {
		m.status = fmt.Sprintf("mention: %v", err)
		return nil
	}
	m.syncLayout()
	return tea.Batch(m.recipientCmd(req), m.settleCmd())
}

// positionAt maps a screen cell inside the body to a caret position.
func (m *Model) positionAt(x, y int) (document.Position, bool) {
	row := y - headerRows
	if row < 0 || row >= m.bodyHeight() {
		return document.Position{}, false
	}
	body := m.doc.Body()
	if body == nil {
		return document.Position{}, false
	}
	para := body.Child(m.scrollTop + row)
	if para == nil {
		return document.Position{}, false
	}
	stops := document.Stops(para)
	col := x
	if width := document.LineWidth(stops); col > width {
		col = width
	}
	for ; col >= 0; col-- {
		if p, ok := document.AtColumn(stops, col); ok {
			return p, true
		}
	}
	return document.Position{}, false
}

func (m *Model) fetchCmd(req mention.FetchRequest) tea.Cmd {
	src := m.contacts
	parent := m.ctx
	// no deadline: a hung fetch leaves the last candidates on screen
	return func() tea.Msg {
		return fetchResultMsg{result: mention.Fetch(parent, src, req)}
	}
}

func (m *Model) settleCmd() tea.Cmd {
	if !m.editor.Placing() {
		return nil
	}
	return func() tea.Msg { return settleMsg{} }
}

// recipientCmd promotes the address and then re-reads the header.
func (m *Model) recipientCmd(req *mention.RecipientRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	sink, host, surfaceID, parent := m.sink, m.host, m.surfaceID, m.ctx
	r := *req
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, recipientTimeout)
		defer cancel()
		mention.EnsureRecipient(ctx, sink, r)
		if host == nil {
			return nil
		}
		details, err := host.GetComposeRecipients(ctx, surfaceID)
		return recipientsMsg{details: details, err: err}
	}
}

func (m *Model) saveCmd() tea.Cmd {
	if m.db == nil || m.surfaceID == "" {
		return nil
	}
	conn, surfaceID := m.db, m.surfaceID
	subject, body := m.subject.Value(), m.doc.PlainText()
	return func() tea.Msg {
		return savedMsg{err: saveDraft(conn, surfaceID, subject, body)}
	}
}

func keyFromTea(msg tea.KeyMsg) mention.Key {
	k := mention.Key{Host: msg}
	switch msg.Type {
	case tea.KeyRunes:
		k.Type = mention.KeyRunes
		k.Runes = msg.Runes
	case tea.KeySpace:
		k.Type = mention.KeyRunes
		k.Runes = []rune{' '}
	case tea.KeyBackspace:
		k.Type = mention.KeyBackspace
	case tea.KeyUp:
		k.Type = mention.KeyUp
	case tea.KeyDown:
		k.Type = mention.KeyDown
	case tea.KeyEnter:
		k.Type = mention.KeyEnter
	case tea.KeyTab:
		k.Type = mention.KeyTab
	case tea.KeyEsc:
		k.Type = mention.KeyEscape
	default:
		k.Type = mention.KeyOther
	}
	return k
}
