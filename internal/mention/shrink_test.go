package mention

import (
	"testing"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
)

func committed(t *testing.T, text string, c types.Candidate) *Editor {
	t.Helper()
	e := startSession(t, text, Options{}, c)
	if _, err := e.Commit(0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	e.Settle()
	return e
}

func TestBackspaceShrinksThenRemoves(t *testing.T) {
	e := committed(t, "hi @ad", ada)
	doc := e.Document()

	out, _ := e.HandleKey(Key{Type: KeyBackspace})
	if out != Handled {
		t.Fatalf("expected shrink to be handled, got %s", out)
	}
	mentions := doc.Mentions()
	if len(mentions) != 1 || mentions[0].Name != "Ada" || mentions[0].Label() != "@Ada" {
		t.Fatalf("expected token shrunk to @Ada, got %+v", mentions)
	}
	if mentions[0].Email != ada.Email {
		t.Fatalf("shrink must keep the email")
	}

	if !e.Backspace() {
		t.Fatalf("expected second backspace to engage")
	}
	if len(doc.Mentions()) != 0 {
		t.Fatalf("expected token removed")
	}
	if got := doc.PlainText(); got != "hi " {
		t.Fatalf("unexpected text %q", got)
	}
	cursor := doc.Cursor()
	if !cursor.Node.IsText() || cursor.Node.Text() != "hi " || cursor.Offset != 3 {
		t.Fatalf("expected cursor at end of preceding text, got %+v", cursor)
	}
	para := doc.Body().FirstChild()
	for _, child := range para.Children() {
		if child.IsAnchor() {
			t.Fatalf("expected anchor removed with the token")
		}
	}
}

func TestBackspaceRemovesTokenAtParagraphStart(t *testing.T) {
	e := committed(t, "@b", bob)
	if !e.Backspace() {
		t.Fatalf("expected backspace to engage")
	}
	doc := e.Document()
	if len(doc.Mentions()) != 0 || doc.PlainText() != "" {
		t.Fatalf("expected empty paragraph, got %q", doc.PlainText())
	}
	if para := doc.Body().FirstChild(); doc.Cursor().Node != para && doc.ParagraphOf(doc.Cursor().Node) != para {
		t.Fatalf("expected cursor inside the paragraph")
	}
}

func TestBackspaceAdjacency(t *testing.T) {
	build := func() (*document.Document, *document.Node, *document.Node) {
		doc := document.FromText("x")
		para := doc.Body().FirstChild()
		token := document.NewMention("@", "ada@example.com", "Ada Lovelace")
		para.AppendChild(token)
		tail := document.NewText(document.CursorAnchor + " more")
		para.AppendChild(tail)
		return doc, token, tail
	}

	tests := []struct {
		name   string
		cursor func(token, tail *document.Node) document.Position
		engage bool
	}{
		{name: "start of following text", cursor: func(_, tail *document.Node) document.Position { return document.Position{Node: tail, Offset: 0} }, engage: true},
		{name: "behind anchor", cursor: func(_, tail *document.Node) document.Position { return document.Position{Node: tail, Offset: 1} }, engage: true},
		{name: "element position after token", cursor: func(token, _ *document.Node) document.Position { return document.After(token) }, engage: true},
		{name: "inside following text", cursor: func(_, tail *document.Node) document.Position { return document.Position{Node: tail, Offset: 3} }, engage: false},
		{name: "before token", cursor: func(token, _ *document.Node) document.Position { return document.Before(token) }, engage: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, token, tail := build()
			doc.SetCursor(tt.cursor(token, tail))
			e := NewEditor(doc, Options{})
			if got := e.Backspace(); got != tt.engage {
				t.Fatalf("expected engage=%v, got %v", tt.engage, got)
			}
			if tt.engage && token.Name != "Ada" {
				t.Fatalf("expected shrink to Ada, got %q", token.Name)
			}
		})
	}
}

func TestBackspaceTrimsSharedAnchor(t *testing.T) {
	doc := document.FromText("")
	para := doc.Body().FirstChild()
	token := document.NewMention("@", "bob@example.com", "Bob")
	para.AppendChild(token)
	tail := document.NewText(document.CursorAnchor + " later")
	para.AppendChild(tail)
	doc.SetCursor(document.Position{Node: tail, Offset: 1})

	e := NewEditor(doc, Options{})
	if !e.Backspace() {
		t.Fatalf("expected backspace to engage")
	}
	if tail.Text() != " later" {
		t.Fatalf("expected leading anchor trimmed, got %q", tail.Text())
	}
	if got := doc.PlainText(); got != " later" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestBackspaceNotAdjacent(t *testing.T) {
	e := NewEditor(document.FromText("hello"), Options{})
	if out, _ := e.HandleKey(Key{Type: KeyBackspace}); out != Unhandled {
		t.Fatalf("expected ordinary backspace, got %s", out)
	}
}
