package mention

import (
	"errors"
	"fmt"
	"log"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
)

var (
	ErrNoSession        = errors.New("no active mention session")
	ErrIndexOutOfRange  = errors.New("candidate index out of range")
	ErrCommitInProgress = errors.New("previous commit is still placing the cursor")
)

// Options configure an Editor.
type Options struct {
	// Settings is consulted whenever a session may start; nil means defaults.
	Settings SettingsSource
	// Layout converts the trigger range to screen geometry for Position.
	Layout document.Layout
	// Metrics size the dropdown; zero values take DefaultMetrics.
	Metrics Metrics
}

// Editor owns one surface's autocomplete session and performs the document
// edits that insert, shrink and remove mention tokens. All methods must be
// called from the surface's single event sequence.
type Editor struct {
	doc      *document.Document
	opts     Options
	cfg      types.Settings
	detector Detector
	session  Session
	gen      uint64
	dropdown *document.Node

	// Commit phase two: where the cursor goes once the host settles, and
	// the keys that arrived meanwhile.
	pending *document.Position
	queued  []Key
}

// NewEditor attaches an editor to doc.
func NewEditor(doc *document.Document, opts Options) *Editor {
	if opts.Metrics == (Metrics{}) {
		opts.Metrics = DefaultMetrics()
	}
	e := &Editor{doc: doc, opts: opts, session: idleSession()}
	e.reloadSettings()
	return e
}

// Document returns the edited document.
func (e *Editor) Document() *document.Document {
	return e.doc
}

// SetLayout replaces the geometry source, e.g. after a resize.
func (e *Editor) SetLayout(layout document.Layout) {
	e.opts.Layout = layout
}

// SetMetrics replaces the dropdown metrics.
func (e *Editor) SetMetrics(m Metrics) {
	e.opts.Metrics = m
}

// Settings returns the snapshot the editor currently works with.
func (e *Editor) Settings() types.Settings {
	return e.cfg.Clone()
}

// Session returns a copy of the session state.
func (e *Editor) Session() Session {
	s := e.session
	s.Candidates = append([]types.Candidate(nil), e.session.Candidates...)
	if e.session.Range != nil {
		r := *e.session.Range
		s.Range = &r
	}
	return s
}

// Active reports whether a session is live.
func (e *Editor) Active() bool {
	return e.session.Active
}

// Visible reports whether the dropdown is showing candidates.
func (e *Editor) Visible() bool {
	return e.session.Active && len(e.session.Candidates) > 0
}

// Placing reports whether a commit still waits for Settle.
func (e *Editor) Placing() bool {
	return e.pending != nil
}

func (e *Editor) reloadSettings() {
	cfg := types.DefaultSettings()
	if e.opts.Settings != nil {
		cfg = e.opts.Settings.Settings()
	}
	e.cfg = cfg.Clone()
	e.detector = NewDetector(e.cfg.Trigger())
}

// HandleInput runs after every document change. It returns a fetch request
// when the cursor is in a trigger; the host runs it asynchronously and hands
// the result to ApplyFetch.
func (e *Editor) HandleInput() *FetchRequest {
	if !e.session.Active {
		e.reloadSettings()
	}
	match, ok := e.detector.Detect(e.doc, e.doc.Selection())
	if !ok {
		if e.session.Active {
			e.end()
		}
		return nil
	}
	e.gen++
	r := match.Range
	e.session.Active = true
	e.session.Query = match.Query
	e.session.Range = &r
	e.session.Generation = e.gen
	if e.Visible() {
		e.renderDropdown()
	}
	return &FetchRequest{Generation: e.gen, Query: match.Query}
}

// ApplyFetch applies a completed fetch if it belongs to the current query.
// It reports whether the result was used.
func (e *Editor) ApplyFetch(res FetchResult) bool {
	if !e.session.Active || res.Generation != e.gen {
		return false
	}
	if res.Err != nil {
		log.Printf("warning: fetch contacts for %q: %v", e.session.Query, res.Err)
		e.end()
		return true
	}
	e.Show(res.Candidates)
	return true
}

// Show renders candidates in the order given. An empty list hides the
// dropdown and ends the session.
func (e *Editor) Show(candidates []types.Candidate) {
	if !e.session.Active {
		return
	}
	if len(candidates) == 0 {
		e.end()
		return
	}
	e.session.Candidates = append([]types.Candidate(nil), candidates...)
	e.session.SelectedIndex = 0
	e.renderDropdown()
}

// Move shifts the selection by delta, clamped to the list.
func (e *Editor) Move(delta int) {
	if !e.Visible() {
		return
	}
	idx := e.session.SelectedIndex + delta
	if idx < 0 {
		idx = 0
	}
	if last := len(e.session.Candidates) - 1; idx > last {
		idx = last
	}
	e.session.SelectedIndex = idx
	e.markSelected()
}

// Hover selects index without committing, as pointer movement does.
func (e *Editor) Hover(index int) {
	if !e.Visible() || index < 0 || index >= len(e.session.Candidates) {
		return
	}
	e.session.SelectedIndex = index
	e.markSelected()
}

// PointerSelect commits the row under a pointer press.
func (e *Editor) PointerSelect(index int) (*RecipientRequest, error) {
	if !e.Visible() {
		return nil, ErrNoSession
	}
	e.Hover(index)
	return e.Commit(index)
}

// Cancel hides the dropdown and ends the session without editing.
func (e *Editor) Cancel() {
	if e.session.Active {
		e.end()
	}
}

// Blur ends the session when focus moves anywhere but the dropdown.
func (e *Editor) Blur(insideDropdown bool) {
	if !insideDropdown {
		e.Cancel()
	}
}

// Commit replaces the trigger range with a mention token for the candidate
// at index, followed by a cursor anchor. The session always ends. The
// cursor is placed by Settle; until then keys are queued. The returned
// request is non-nil when the address should be promoted into To.
func (e *Editor) Commit(index int) (*RecipientRequest, error) {
	if e.pending != nil {
		return nil, ErrCommitInProgress
	}
	if !e.session.Active || e.session.Range == nil {
		return nil, ErrNoSession
	}
	if index < 0 || index >= len(e.session.Candidates) {
		e.end()
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(e.session.Candidates))
	}

	candidate := e.session.Candidates[index]
	span := *e.session.Range
	trigger := span.Start
	displayName := candidate.DisplayName()
	e.end()

	if err := e.doc.DeleteContents(span); err != nil {
		return nil, fmt.Errorf("remove trigger text: %w", err)
	}
	token := document.NewMention(string(e.detector.Trigger), candidate.Email, displayName)
	after, err := e.doc.InsertNode(trigger, token)
	if err != nil {
		return nil, fmt.Errorf("insert mention: %w", err)
	}
	anchor := document.NewAnchor()
	token.Parent().InsertAfter(anchor, token)

	e.doc.SetCursor(after)
	e.pending = &document.Position{Node: anchor, Offset: anchor.RuneLen()}

	if !e.cfg.AutoAddRecipient {
		return nil, nil
	}
	return &RecipientRequest{Email: candidate.Email, Name: displayName}, nil
}

// Settle is phase two of a commit: it moves the cursor behind the anchor and
// returns the keys queued since the commit, in arrival order, for the host
// to dispatch again.
func (e *Editor) Settle() []Key {
	if e.pending == nil {
		return nil
	}
	target := *e.pending
	e.pending = nil
	if e.doc.Contains(target.Node) && target.Valid() {
		e.doc.SetCursor(target)
	}
	queued := e.queued
	e.queued = nil
	return queued
}

// HandleKey routes a keypress. Backspace next to a mention shrinks it before
// anything else is considered; navigation keys act only while the dropdown
// is visible. A commit via Enter or Tab returns the recipient request.
func (e *Editor) HandleKey(k Key) (Outcome, *RecipientRequest) {
	if e.pending != nil {
		e.queued = append(e.queued, k)
		return Queued, nil
	}
	if k.Type == KeyBackspace && e.Backspace() {
		return Handled, nil
	}
	if !e.Visible() {
		return Unhandled, nil
	}
	switch k.Type {
	case KeyDown:
		e.Move(1)
		return Handled, nil
	case KeyUp:
		e.Move(-1)
		return Handled, nil
	case KeyEnter, KeyTab:
		if e.session.SelectedIndex < 0 {
			return Unhandled, nil
		}
		req, err := e.Commit(e.session.SelectedIndex)
		if err != nil {
			log.Printf("warning: commit mention: %v", err)
		}
		return Handled, req
	case KeyEscape:
		e.Cancel()
		return Handled, nil
	}
	return Unhandled, nil
}

func (e *Editor) end() {
	e.session = idleSession()
	e.hideDropdown()
}
