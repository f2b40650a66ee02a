package compose

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/mention"
	"github.com/adamavenir/whorl/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

type fakeContacts struct {
	candidates []types.Candidate
}

func (f fakeContacts) GetContacts(ctx context.Context, query string) ([]types.Candidate, error) {
	var out []types.Candidate
	for _, c := range f.candidates {
		if core.MatchesQuery(c.Name, c.Email, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSink struct {
	mu    sync.Mutex
	calls []mention.RecipientRequest
}

func (f *fakeSink) EnsureRecipientInTo(ctx context.Context, email, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mention.RecipientRequest{Email: email, Name: name})
	return nil
}

type fixedSettings struct {
	settings types.Settings
}

func (f fixedSettings) Settings() types.Settings {
	return f.settings.Clone()
}

var (
	ada = types.Candidate{Name: "Ada Lovelace", Email: "ada@example.com"}
	amy = types.Candidate{Name: "Amy Adams", Email: "amy@example.com"}
)

func newTestModel(t *testing.T, body string, sink *fakeSink) *Model {
	t.Helper()
	m := NewModel(Options{
		SurfaceID:  "cmp-test",
		Draft:      &types.Draft{SurfaceID: "cmp-test", Body: body},
		Contacts:   fakeContacts{candidates: []types.Candidate{ada, amy}},
		Recipients: sink,
		Settings:   fixedSettings{settings: types.DefaultSettings()},
	})
	t.Cleanup(m.Close)
	return m
}

// drain runs cmd and everything it leads to, feeding messages to m.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, more := m.Update(msg)
			queue = append(queue, more)
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		drain(t, m, m.dispatchKey(runes(string(r))))
	}
}

func TestTypingTriggerShowsDropdown(t *testing.T) {
	m := newTestModel(t, "hi ", &fakeSink{})
	typeText(t, m, "@a")

	session := m.Editor().Session()
	if !m.Editor().Visible() || len(session.Candidates) != 2 || session.Query != "a" {
		t.Fatalf("expected two candidates for a, got %+v", session)
	}

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "> Ada Lovelace <ada@example.com>") {
		t.Fatalf("expected selected row in view:\n%s", view)
	}
	if !strings.Contains(view, "  Amy Adams <amy@example.com>") {
		t.Fatalf("expected second row in view:\n%s", view)
	}

	typeText(t, m, "my")
	if got := m.Editor().Session().Candidates; len(got) != 1 || got[0].Email != amy.Email {
		t.Fatalf("expected narrowed candidates, got %+v", got)
	}
}

// hungContacts blocks every lookup until its context is cancelled.
type hungContacts struct {
	entered chan bool
}

func (h hungContacts) GetContacts(ctx context.Context, query string) ([]types.Candidate, error) {
	_, hasDeadline := ctx.Deadline()
	h.entered <- hasDeadline
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestHungFetchKeepsLastCandidates(t *testing.T) {
	m := newTestModel(t, "", &fakeSink{})
	typeText(t, m, "@a")
	if !m.Editor().Visible() {
		t.Fatalf("expected dropdown after @a")
	}

	hung := hungContacts{entered: make(chan bool, 1)}
	m.contacts = hung
	cmd := m.dispatchKey(runes("d"))
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	if hasDeadline := <-hung.entered; hasDeadline {
		t.Fatalf("expected fetch without a deadline")
	}
	session := m.Editor().Session()
	if !m.Editor().Visible() || len(session.Candidates) != 2 || session.Query != "ad" {
		t.Fatalf("expected previous candidates while fetch hangs, got %+v", session)
	}
	select {
	case msg := <-done:
		t.Fatalf("expected fetch to stay pending, got %#v", msg)
	default:
	}

	m.Close()
	<-done
}

func TestEnterCommitsAndReplaysQueuedKeys(t *testing.T) {
	sink := &fakeSink{}
	m := newTestModel(t, "hi ", sink)
	typeText(t, m, "@ad")

	cmd := m.dispatchKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Editor().Placing() {
		t.Fatalf("expected commit awaiting cursor placement")
	}
	if cmd := m.dispatchKey(runes("!")); cmd != nil {
		t.Fatalf("expected key to be queued")
	}
	drain(t, m, cmd)

	if m.Editor().Placing() {
		t.Fatalf("expected placement to settle")
	}
	if got := m.Document().PlainText(); got != "hi @Ada Lovelace!" {
		t.Fatalf("unexpected body %q", got)
	}
	if mentions := m.Document().Mentions(); len(mentions) != 1 || mentions[0].Email != ada.Email {
		t.Fatalf("expected one mention for ada, got %d", len(mentions))
	}
	if len(sink.calls) != 1 || sink.calls[0].Email != ada.Email || sink.calls[0].Name != "Ada Lovelace" {
		t.Fatalf("unexpected recipient calls %+v", sink.calls)
	}
	if m.Editor().Active() {
		t.Fatalf("expected session to end after commit")
	}
}

func TestBackspaceShrinksMention(t *testing.T) {
	m := newTestModel(t, "", &fakeSink{})
	typeText(t, m, "@ad")
	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyTab}))

	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyBackspace}))
	if got := m.Document().PlainText(); got != "@Ada" {
		t.Fatalf("expected shrunk mention, got %q", got)
	}
	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyBackspace}))
	if got := m.Document().PlainText(); got != "" || len(m.Document().Mentions()) != 0 {
		t.Fatalf("expected mention removed, got %q", got)
	}
}

func TestEscapeAndArrowKeys(t *testing.T) {
	m := newTestModel(t, "", &fakeSink{})
	typeText(t, m, "@a")

	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyDown}))
	if got := m.Editor().Session().SelectedIndex; got != 1 {
		t.Fatalf("expected selection 1, got %d", got)
	}
	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyEsc}))
	if m.Editor().Active() {
		t.Fatalf("expected escape to end the session")
	}
	if got := m.Document().PlainText(); got != "@a" {
		t.Fatalf("expected text untouched, got %q", got)
	}
}

func TestPointerSelectCommitsRow(t *testing.T) {
	m := newTestModel(t, "", &fakeSink{})
	typeText(t, m, "@a")

	drain(t, m, m.selectItem(1))
	if got := m.Document().PlainText(); got != "@Amy Adams" {
		t.Fatalf("expected second candidate, got %q", got)
	}
}

func TestClickOutsideDropdownCloses(t *testing.T) {
	m := newTestModel(t, "hello", &fakeSink{})
	typeText(t, m, " @a")
	if !m.Editor().Visible() {
		t.Fatalf("expected dropdown")
	}

	m.handleMouseMsg(tea.MouseMsg{X: 0, Y: headerRows, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Editor().Active() {
		t.Fatalf("expected click outside to end the session")
	}
	if cur := m.Document().Cursor(); !cur.Node.IsText() || cur.Offset != 0 {
		t.Fatalf("expected cursor at line start, got %+v", cur)
	}
}

func TestShiftTabFocusesSubject(t *testing.T) {
	m := newTestModel(t, "", &fakeSink{})
	drain(t, m, m.dispatchKey(tea.KeyMsg{Type: tea.KeyShiftTab}))
	if m.focus != focusSubject {
		t.Fatalf("expected subject focus")
	}
	m.Update(runes("Re"))
	if got := m.subject.Value(); got != "Re" {
		t.Fatalf("expected subject Re, got %q", got)
	}
	if m.Document().PlainText() != "" {
		t.Fatalf("expected body untouched")
	}
}

func TestKeyFromTea(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want mention.KeyType
	}{
		{runes("x"), mention.KeyRunes},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, mention.KeyRunes},
		{tea.KeyMsg{Type: tea.KeyBackspace}, mention.KeyBackspace},
		{tea.KeyMsg{Type: tea.KeyUp}, mention.KeyUp},
		{tea.KeyMsg{Type: tea.KeyDown}, mention.KeyDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, mention.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyTab}, mention.KeyTab},
		{tea.KeyMsg{Type: tea.KeyEsc}, mention.KeyEscape},
		{tea.KeyMsg{Type: tea.KeyLeft}, mention.KeyOther},
	}
	for _, tt := range tests {
		got := keyFromTea(tt.msg)
		if got.Type != tt.want {
			t.Errorf("%v: expected %v, got %v", tt.msg, tt.want, got.Type)
		}
		if host, ok := got.Host.(tea.KeyMsg); !ok || host.Type != tt.msg.Type {
			t.Errorf("%v: expected original message kept", tt.msg)
		}
	}
}

func TestOverlay(t *testing.T) {
	bg := "aaaaaa\nbbbbbb\ncccccc"
	got := overlay(bg, "XY\nZ", 2, 1)
	want := "aaaaaa\nbbXYbb\nccZ cc"
	if got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
	if got := overlay("ab", "XY", 4, 0); got != "ab  XY" {
		t.Fatalf("expected padding past line end, got %q", got)
	}
}

func TestDrawCursor(t *testing.T) {
	if got := ansi.Strip(drawCursor("abc", 1)); got != "abc" {
		t.Fatalf("expected text kept, got %q", got)
	}
	if got := ansi.Strip(drawCursor("abc", 3)); got != "abc " {
		t.Fatalf("expected trailing block, got %q", got)
	}
	if got := drawCursor("abc", -1); got != "abc" {
		t.Fatalf("expected no cursor, got %q", got)
	}
}

func TestSaveDraft(t *testing.T) {
	profile, err := core.ResolveProfile(t.TempDir())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	conn, err := db.OpenDatabase(profile)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	surfaceID := NewSurfaceID()
	if !strings.HasPrefix(surfaceID, "cmp-") {
		t.Fatalf("unexpected surface id %q", surfaceID)
	}
	draft, err := OpenDraft(conn, surfaceID)
	if err != nil {
		t.Fatalf("open draft: %v", err)
	}

	m := NewModel(Options{DB: conn, SurfaceID: surfaceID, Draft: draft})
	t.Cleanup(m.Close)
	typeText(t, m, "hello")
	drain(t, m, m.saveCmd())
	if m.status != "draft saved" {
		t.Fatalf("unexpected status %q", m.status)
	}

	stored, err := db.GetDraft(conn, surfaceID)
	if err != nil || stored == nil || stored.Body != "hello" {
		t.Fatalf("expected saved body, got %+v %v", stored, err)
	}
}
