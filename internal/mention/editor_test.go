package mention

import (
	"context"
	"errors"
	"testing"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
)

type staticSettings struct {
	settings types.Settings
}

func (s *staticSettings) Settings() types.Settings {
	return s.settings.Clone()
}

var ada = types.Candidate{Name: "Ada Lovelace", Email: "ada@example.com"}
var bob = types.Candidate{Email: "bob@example.com"}

func startSession(t *testing.T, text string, opts Options, candidates ...types.Candidate) *Editor {
	t.Helper()
	e := NewEditor(document.FromText(text), opts)
	req := e.HandleInput()
	if req == nil {
		t.Fatalf("expected fetch request for %q", text)
	}
	if !e.ApplyFetch(FetchResult{Generation: req.Generation, Candidates: candidates}) {
		t.Fatalf("expected fetch result to apply")
	}
	return e
}

func TestHandleInputStartsAndEndsSession(t *testing.T) {
	e := NewEditor(document.FromText("hi @ad"), Options{})
	req := e.HandleInput()
	if req == nil || req.Query != "ad" {
		t.Fatalf("expected request for ad, got %+v", req)
	}
	if !e.Active() || e.Visible() {
		t.Fatalf("expected active session without candidates yet")
	}

	text := e.Document().Cursor().Node
	e.Document().SetCursor(document.Position{Node: text, Offset: 2})
	if req := e.HandleInput(); req != nil {
		t.Fatalf("expected no request after trigger lost, got %+v", req)
	}
	s := e.Session()
	if s.Active || s.Range != nil || s.SelectedIndex != -1 || len(s.Candidates) != 0 {
		t.Fatalf("expected idle session, got %+v", s)
	}
}

func TestApplyFetchDiscardsStaleResults(t *testing.T) {
	e := NewEditor(document.FromText("@a"), Options{})
	first := e.HandleInput()
	e.Document().InsertText("d")
	second := e.HandleInput()
	if second.Generation <= first.Generation {
		t.Fatalf("expected increasing generations")
	}

	if e.ApplyFetch(FetchResult{Generation: first.Generation, Candidates: []types.Candidate{bob}}) {
		t.Fatalf("expected stale result to be discarded")
	}
	if e.Visible() {
		t.Fatalf("stale result must not show")
	}
	if !e.ApplyFetch(FetchResult{Generation: second.Generation, Candidates: []types.Candidate{ada}}) {
		t.Fatalf("expected current result to apply")
	}
	if got := e.Session().Candidates; len(got) != 1 || got[0].Email != ada.Email {
		t.Fatalf("unexpected candidates %+v", got)
	}
}

func TestApplyFetchAfterCancelIsIgnored(t *testing.T) {
	e := NewEditor(document.FromText("@a"), Options{})
	req := e.HandleInput()
	e.Cancel()
	if e.ApplyFetch(FetchResult{Generation: req.Generation, Candidates: []types.Candidate{ada}}) {
		t.Fatalf("expected result for cancelled session to be ignored")
	}
}

func TestApplyFetchFailureHides(t *testing.T) {
	e := startSession(t, "@a", Options{}, ada)
	req := e.HandleInput()
	e.ApplyFetch(FetchResult{Generation: req.Generation, Err: errors.New("address book offline")})
	if e.Active() || e.Visible() {
		t.Fatalf("expected failure to end the session")
	}
}

func TestShowEmptyEndsSession(t *testing.T) {
	e := startSession(t, "@a", Options{}, ada)
	e.Show(nil)
	if e.Active() {
		t.Fatalf("expected empty list to end the session")
	}
	if n := e.Dropdown(); n != nil && n.Attr("display") != "none" {
		t.Fatalf("expected dropdown hidden")
	}
}

func TestMoveClamps(t *testing.T) {
	e := startSession(t, "@", Options{}, ada, bob)
	tests := []struct {
		delta int
		want  int
	}{
		{delta: -1, want: 0},
		{delta: 1, want: 1},
		{delta: 1, want: 1},
		{delta: -5, want: 0},
	}
	for _, tt := range tests {
		e.Move(tt.delta)
		if got := e.Session().SelectedIndex; got != tt.want {
			t.Fatalf("move %d: expected %d, got %d", tt.delta, tt.want, got)
		}
	}
}

func TestHandleKeyRouting(t *testing.T) {
	e := startSession(t, "@", Options{}, ada, bob)

	if out, _ := e.HandleKey(Key{Type: KeyDown}); out != Handled {
		t.Fatalf("expected down handled, got %s", out)
	}
	if got := e.Session().SelectedIndex; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if out, _ := e.HandleKey(Key{Type: KeyUp}); out != Handled {
		t.Fatalf("expected up handled, got %s", out)
	}
	if out, _ := e.HandleKey(Key{Type: KeyRunes, Runes: []rune("x")}); out != Unhandled {
		t.Fatalf("expected runes unhandled, got %s", out)
	}
	if out, _ := e.HandleKey(Key{Type: KeyEscape}); out != Handled {
		t.Fatalf("expected escape handled, got %s", out)
	}
	if e.Active() {
		t.Fatalf("expected escape to end the session")
	}
	if out, _ := e.HandleKey(Key{Type: KeyDown}); out != Unhandled {
		t.Fatalf("expected down unhandled while hidden, got %s", out)
	}
}

func TestCommitInsertsToken(t *testing.T) {
	e := startSession(t, "hi @ad", Options{}, ada)

	out, req := e.HandleKey(Key{Type: KeyEnter})
	if out != Handled {
		t.Fatalf("expected enter handled, got %s", out)
	}
	if req == nil || req.Email != ada.Email || req.Name != ada.Name {
		t.Fatalf("unexpected recipient request %+v", req)
	}
	if e.Active() {
		t.Fatalf("expected commit to end the session")
	}

	doc := e.Document()
	if got := doc.PlainText(); got != "hi @Ada Lovelace" {
		t.Fatalf("unexpected text %q", got)
	}
	mentions := doc.Mentions()
	if len(mentions) != 1 || mentions[0].Email != ada.Email {
		t.Fatalf("expected one mention for ada, got %d", len(mentions))
	}
	if !mentions[0].NextSibling().IsAnchor() {
		t.Fatalf("expected cursor anchor after the token")
	}

	if !e.Placing() {
		t.Fatalf("expected placing phase after commit")
	}
	if out, _ := e.HandleKey(Key{Type: KeyRunes, Runes: []rune("x")}); out != Queued {
		t.Fatalf("expected key queued while placing, got %s", out)
	}
	queued := e.Settle()
	if len(queued) != 1 || string(queued[0].Runes) != "x" {
		t.Fatalf("expected queued key back, got %+v", queued)
	}
	cursor := doc.Cursor()
	if !cursor.Node.IsAnchor() || cursor.Offset != 1 {
		t.Fatalf("expected cursor after the anchor, got %+v", cursor)
	}

	doc.InsertText(" and")
	if got := doc.PlainText(); got != "hi @Ada Lovelace and" {
		t.Fatalf("unexpected text after typing %q", got)
	}
}

func TestCommitUsesEmailWhenNameMissing(t *testing.T) {
	e := startSession(t, "@b", Options{}, bob)
	if _, err := e.Commit(0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := e.Document().PlainText(); got != "@bob@example.com" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestCommitErrors(t *testing.T) {
	e := NewEditor(document.FromText("plain"), Options{})
	if _, err := e.Commit(0); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	e = startSession(t, "@a", Options{}, ada)
	if _, err := e.Commit(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if e.Active() {
		t.Fatalf("expected failed commit to end the session")
	}
	if got := e.Document().PlainText(); got != "@a" {
		t.Fatalf("expected no edit, got %q", got)
	}
}

func TestCommitWithoutAutoAdd(t *testing.T) {
	cfg := types.DefaultSettings()
	cfg.AutoAddRecipient = false
	e := startSession(t, "@a", Options{Settings: &staticSettings{settings: cfg}}, ada)
	req, err := e.Commit(0)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if req != nil {
		t.Fatalf("expected no recipient request, got %+v", req)
	}
}

func TestPointerSelect(t *testing.T) {
	e := startSession(t, "@", Options{}, ada, bob)
	e.Hover(1)
	if got := e.Session().SelectedIndex; got != 1 {
		t.Fatalf("expected hover to select 1, got %d", got)
	}
	req, err := e.PointerSelect(1)
	if err != nil {
		t.Fatalf("pointer select: %v", err)
	}
	if req == nil || req.Email != bob.Email {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestBlur(t *testing.T) {
	e := startSession(t, "@", Options{}, ada)
	e.Blur(true)
	if !e.Active() {
		t.Fatalf("focus moving into the dropdown must keep the session")
	}
	e.Blur(false)
	if e.Active() {
		t.Fatalf("expected blur to end the session")
	}
}

func TestSettingsSnapshotHeldForSession(t *testing.T) {
	src := &staticSettings{settings: types.DefaultSettings()}
	e := NewEditor(document.FromText("@a"), Options{Settings: src})
	if e.HandleInput() == nil {
		t.Fatalf("expected session with @")
	}

	src.settings.TriggerCharacter = "#"
	e.Document().InsertText("d")
	if e.HandleInput() == nil {
		t.Fatalf("expected session to keep its @ snapshot")
	}

	e.Cancel()
	if e.HandleInput() != nil {
		t.Fatalf("expected new snapshot with # after session ended")
	}
}

func TestDropdownRecreatedAfterContentReplaced(t *testing.T) {
	e := startSession(t, "@a", Options{}, ada)
	if e.Dropdown() == nil {
		t.Fatalf("expected dropdown attached")
	}

	e.Document().ReplaceContent("@b")
	if e.Dropdown() != nil {
		t.Fatalf("expected dropdown gone with the old tree")
	}
	req := e.HandleInput()
	e.ApplyFetch(FetchResult{Generation: req.Generation, Candidates: []types.Candidate{bob}})

	n := e.Document().FindByID(DropdownID)
	if n == nil || n != e.Dropdown() {
		t.Fatalf("expected dropdown re-created in the new tree")
	}
	if n.Attr("display") != "block" || len(n.Children()) != 1 {
		t.Fatalf("unexpected dropdown state display=%s items=%d", n.Attr("display"), len(n.Children()))
	}
}

type failingSource struct{}

func (failingSource) GetContacts(ctx context.Context, query string) ([]types.Candidate, error) {
	panic("boom")
}

func TestFetchRecoversPanics(t *testing.T) {
	res := Fetch(context.Background(), failingSource{}, FetchRequest{Generation: 4, Query: "a"})
	if res.Err == nil || res.Generation != 4 {
		t.Fatalf("expected error result for generation 4, got %+v", res)
	}
}
