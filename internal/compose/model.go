// Package compose is the terminal compose surface: recipient header,
// subject line and a body document with @mention autocomplete.
package compose

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adamavenir/whorl/internal/contacts"
	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/mention"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

const (
	recipientTimeout = 5 * time.Second

	// rows above the body: To, Cc, Bcc, Subject and a rule
	headerRows = 5
	statusRows = 1
)

// Options configure a compose surface.
type Options struct {
	DB        *sql.DB
	SurfaceID string
	Draft     *types.Draft

	Contacts   mention.ContactSource
	Recipients mention.RecipientSink
	Settings   mention.SettingsSource
	// Host is read after recipient changes to refresh the header.
	Host contacts.ComposeHost
}

// Run starts the compose UI and saves the draft on exit.
func Run(opts Options) error {
	model := NewModel(opts)
	title := "whorl"
	if opts.Draft != nil && opts.Draft.Subject != "" {
		title = "whorl · " + opts.Draft.Subject
	}
	fmt.Printf("\033]0;%s\007", title)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := program.Run()
	model.Close()
	if saveErr := model.save(); saveErr != nil && err == nil {
		err = saveErr
	}
	return err
}

type focusArea int

const (
	focusBody focusArea = iota
	focusSubject
)

// Model implements the compose UI.
type Model struct {
	db        *sql.DB
	surfaceID string
	host      contacts.ComposeHost
	contacts  mention.ContactSource
	sink      mention.RecipientSink

	ctx    context.Context
	cancel context.CancelFunc

	doc        *document.Document
	editor     *mention.Editor
	subject    textinput.Model
	recipients types.ComposeDetails
	focus      focusArea

	width       int
	height      int
	scrollTop   int
	status      string
	style       mention.DropdownStyle
	zoneManager *zone.Manager
}

// NewModel builds a compose model around the draft in opts.
func NewModel(opts Options) *Model {
	body := ""
	subject := ""
	var recipients types.ComposeDetails
	if opts.Draft != nil {
		body = opts.Draft.Body
		subject = opts.Draft.Subject
		recipients = opts.Draft.Recipients
	}

	doc := document.FromText(body)
	editor := mention.NewEditor(doc, mention.Options{
		Settings: opts.Settings,
		Metrics:  terminalMetrics,
	})

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "Subject"
	input.SetValue(subject)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		db:          opts.DB,
		surfaceID:   opts.SurfaceID,
		host:        opts.Host,
		contacts:    opts.Contacts,
		sink:        opts.Recipients,
		ctx:         ctx,
		cancel:      cancel,
		doc:         doc,
		editor:      editor,
		subject:     input,
		recipients:  recipients,
		width:       80,
		height:      24,
		style:       mention.DefaultDropdownStyle(),
		zoneManager: zone.New(),
	}
	m.syncLayout()
	return m
}

// terminalMetrics sizes the dropdown in cells.
var terminalMetrics = mention.Metrics{
	Width:        40,
	Height:       8,
	Margin:       1,
	Gap:          0,
	FallbackLeft: 2,
	FallbackTop:  headerRows,
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Close cancels outstanding fetches and recipient calls.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.zoneManager != nil {
		m.zoneManager.Close()
	}
}

// Document exposes the body document.
func (m *Model) Document() *document.Document {
	return m.doc
}

// Editor exposes the mention editor bound to the body.
func (m *Model) Editor() *mention.Editor {
	return m.editor
}

// Recipients returns the header as last read from the host.
func (m *Model) Recipients() types.ComposeDetails {
	return m.recipients
}

// bodyHeight is the number of body rows on screen.
func (m *Model) bodyHeight() int {
	h := m.height - headerRows - statusRows
	if h < 1 {
		h = 1
	}
	return h
}

// syncLayout keeps the cursor paragraph on screen and hands the editor the
// grid the body is drawn on.
func (m *Model) syncLayout() {
	if para := m.doc.ParagraphOf(m.doc.Cursor().Node); para != nil {
		row := para.Index()
		if row < m.scrollTop {
			m.scrollTop = row
		}
		if row >= m.scrollTop+m.bodyHeight() {
			m.scrollTop = row - m.bodyHeight() + 1
		}
	}
	m.editor.SetLayout(document.GridLayout{
		Doc:        m.doc,
		OriginX:    0,
		OriginY:    headerRows,
		ViewWidth:  m.width,
		ViewHeight: m.height,
		ScrollTop:  m.scrollTop,
	})
}

func (m *Model) save() error {
	if m.db == nil || m.surfaceID == "" {
		return nil
	}
	return saveDraft(m.db, m.surfaceID, m.subject.Value(), m.doc.PlainText())
}
