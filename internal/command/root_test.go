package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/spf13/cobra"
)

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// run executes one command against a fresh root bound to profile.
func run(t *testing.T, profile string, args ...string) string {
	t.Helper()
	output, err := executeCommand(NewRootCmd("test"), append([]string{"--profile", profile}, args...)...)
	if err != nil {
		t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, output)
	}
	return output
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "whorl version test") {
		t.Fatalf("expected version output, got %q", output)
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "@mention autocomplete") {
		t.Fatalf("expected help output, got %q", output)
	}
}

func TestConfigCommands(t *testing.T) {
	profile := t.TempDir()

	if out := run(t, profile, "config", "max-results", "abc"); !strings.Contains(out, "Set max_results = 10") {
		t.Fatalf("expected unparsable limit to fall back, got %q", out)
	}
	run(t, profile, "config", "trigger_character", "+")
	if out := run(t, profile, "config", "trigger_character"); out != "trigger_character: +\n" {
		t.Fatalf("unexpected get output %q", out)
	}

	out := run(t, profile, "--json", "config")
	var entries map[string]string
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if entries["trigger_character"] != "+" || entries["auto_add_recipient"] != "true" {
		t.Fatalf("unexpected entries %v", entries)
	}

	if _, err := executeCommand(NewRootCmd("test"), "--profile", profile, "config", "nope"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := executeCommand(NewRootCmd("test"), "--profile", profile, "config", "auto_add_recipient", "maybe"); err == nil {
		t.Fatalf("expected bool parse error")
	}
}

func TestConfigExportImport(t *testing.T) {
	source := t.TempDir()
	run(t, source, "contacts", "add", "Ada", "ada@example.com")
	run(t, source, "blocklist", "add", "noreply")
	run(t, source, "config", "search_address_books", "false")

	file := filepath.Join(t.TempDir(), "settings.toml")
	run(t, source, "config", "export", file)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "search_address_books = false") {
		t.Fatalf("unexpected export:\n%s", data)
	}

	target := t.TempDir()
	if out := run(t, target, "config", "import", file); !strings.Contains(out, "1 custom contacts, 1 blocklist entries") {
		t.Fatalf("unexpected import output %q", out)
	}
	if out := run(t, target, "contacts"); !strings.Contains(out, "Ada <ada@example.com>") {
		t.Fatalf("expected imported contact, got %q", out)
	}
}

func TestContactsCommands(t *testing.T) {
	profile := t.TempDir()
	run(t, profile, "contacts", "add", "Ada", "ada@example.com")

	tests := []struct {
		name string
		args []string
	}{
		{"duplicate", []string{"contacts", "add", "Other", "ADA@example.com"}},
		{"invalid email", []string{"contacts", "add", "Bad", "not-an-email"}},
		{"missing name", []string{"contacts", "add", " ", "bob@example.com"}},
		{"remove unknown", []string{"contacts", "rm", "nobody@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(NewRootCmd("test"), append([]string{"--profile", profile}, tt.args...)...)
			if err == nil {
				t.Fatalf("expected error, got output %q", out)
			}
			if !strings.HasPrefix(out, "Error: ") {
				t.Fatalf("expected error output, got %q", out)
			}
		})
	}

	run(t, profile, "contacts", "rm", "ADA@example.com")
	if out := run(t, profile, "contacts", "ls"); out != "No custom contacts\n" {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestBlocklistCommands(t *testing.T) {
	profile := t.TempDir()
	if out := run(t, profile, "blocklist", "add", "  spam  "); out != "Blocked spam\n" {
		t.Fatalf("expected trimmed entry, got %q", out)
	}
	if _, err := executeCommand(NewRootCmd("test"), "--profile", profile, "blocklist", "add", "spam"); err == nil {
		t.Fatalf("expected duplicate error")
	}
	run(t, profile, "blocklist", "add", "*@noreply.example.com")

	out := run(t, profile, "--json", "blocklist")
	var entries []string
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0] != "spam" {
		t.Fatalf("unexpected entries %v", entries)
	}

	run(t, profile, "blocklist", "rm", "spam")
	if _, err := executeCommand(NewRootCmd("test"), "--profile", profile, "blocklist", "rm", "spam"); err == nil {
		t.Fatalf("expected missing entry error")
	}
}

func TestDraftsAndQuery(t *testing.T) {
	profile := t.TempDir()
	vcf := filepath.Join(t.TempDir(), "contacts.vcf")
	card := "BEGIN:VCARD\nVERSION:3.0\nFN:Adrian Ames\nEMAIL:adrian@example.com\nEND:VCARD\n"
	if err := os.WriteFile(vcf, []byte(card), 0o644); err != nil {
		t.Fatalf("write vcf: %v", err)
	}
	if out := run(t, profile, "addressbook", "import", vcf); out != "Imported 1 contacts\n" {
		t.Fatalf("unexpected import output %q", out)
	}
	run(t, profile, "contacts", "add", "Adele", "adele@example.com")

	out := run(t, profile, "--json", "drafts", "new", "--cc", "Ada <ada@example.com>", "--subject", "plans")
	var draft types.Draft
	if err := json.Unmarshal([]byte(out), &draft); err != nil {
		t.Fatalf("decode draft: %v\n%s", err, out)
	}
	if !strings.HasPrefix(draft.SurfaceID, "cmp-") || len(draft.Recipients.Cc) != 1 {
		t.Fatalf("unexpected draft %+v", draft)
	}

	out = run(t, profile, "query", draft.SurfaceID, "ad")
	want := "* Ada <ada@example.com>\n  Adele <adele@example.com>\n  Adrian Ames <adrian@example.com>\n"
	if out != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, out)
	}

	if out := run(t, profile, "drafts", "to", draft.SurfaceID, "ada@example.com", "Ada"); out != "To: Ada <ada@example.com>\n" {
		t.Fatalf("unexpected ensure output %q", out)
	}
	show := run(t, profile, "drafts", "show", draft.SurfaceID)
	if !strings.Contains(show, "Cc:      -\n") || !strings.Contains(show, "Subject: plans\n") {
		t.Fatalf("unexpected show output:\n%s", show)
	}

	run(t, profile, "drafts", "rm", draft.SurfaceID)
	if out := run(t, profile, "drafts"); out != "No drafts\n" {
		t.Fatalf("expected no drafts, got %q", out)
	}
}

func TestAddressBookCommands(t *testing.T) {
	profile := t.TempDir()
	out := run(t, profile, "--json", "addressbook", "add", "Grace Hopper", "grace@example.com", "admiral@example.org")
	var contact types.AddressBookContact
	if err := json.Unmarshal([]byte(out), &contact); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}

	if out := run(t, profile, "addressbook", "ls", "admiral"); !strings.Contains(out, "Grace Hopper <grace@example.com, admiral@example.org>") {
		t.Fatalf("unexpected listing %q", out)
	}
	if _, err := executeCommand(NewRootCmd("test"), "--profile", profile, "addressbook", "add", "Bad", "nope"); err == nil {
		t.Fatalf("expected invalid email error")
	}
	run(t, profile, "addressbook", "rm", contact.ID)
	if out := run(t, profile, "ab"); out != "No address book entries\n" {
		t.Fatalf("expected empty address book, got %q", out)
	}
}

func TestWriteCommandErrorHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("SQL logic error: no such table: whorl_drafts"), "Error: SQL logic error: no such table: whorl_drafts\nHint: " + schemaHint + "\n"},
		{errors.New("no such table: other"), "Error: no such table: other\n"},
		{fmt.Errorf("%w: cmp-x", db.ErrDraftNotFound), "Error: draft not found: cmp-x\nHint: list drafts with: whorl drafts ls\n"},
		{db.ErrDuplicateBlocklistEntry, "Error: entry already in blocklist\nHint: list blocklist entries with: whorl blocklist ls\n"},
		{errors.New("boom"), "Error: boom\n"},
	}
	for _, tt := range tests {
		cmd := NewRootCmd("test")
		buf := new(bytes.Buffer)
		cmd.SetErr(buf)
		_ = writeCommandError(cmd, tt.err)
		if buf.String() != tt.want {
			t.Errorf("writeCommandError(%v): expected %q, got %q", tt.err, tt.want, buf.String())
		}
	}
}

func TestDuplicateBlocklistEntryHint(t *testing.T) {
	profile := t.TempDir()
	run(t, profile, "blocklist", "add", "spam")

	cmd := NewRootCmd("test")
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--profile", profile, "blocklist", "add", "spam"})
	if err := cmd.Execute(); !errors.Is(err, db.ErrDuplicateBlocklistEntry) {
		t.Fatalf("expected ErrDuplicateBlocklistEntry, got %v", err)
	}
	if !strings.Contains(out.String(), "whorl blocklist ls") {
		t.Fatalf("expected blocklist hint, got %q", out.String())
	}
}
