package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

const schemaHint = "This profile's schema is out of date. Try: whorl config export > settings.toml, then start a new profile and import it"

// follow-up commands for errors a user can act on
var errorHints = []struct {
	err  error
	hint string
}{
	{db.ErrDuplicateContact, "list custom contacts with: whorl contacts ls"},
	{db.ErrDuplicateBlocklistEntry, "list blocklist entries with: whorl blocklist ls"},
	{db.ErrAmbiguousContact, "use a longer id from: whorl ab ls"},
	{db.ErrContactNotFound, "list address book entries with: whorl ab ls"},
	{db.ErrDraftNotFound, "list drafts with: whorl drafts ls"},
	{db.ErrUnknownSetting, "list settings with: whorl config"},
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", hint)
	}
	return err
}

func errorHint(err error) string {
	if err == nil {
		return ""
	}
	if isSchemaError(err) {
		return schemaHint
	}
	for _, h := range errorHints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}
	return ""
}

// isSchemaError reports a missing whorl_* table or column.
func isSchemaError(err error) bool {
	msg := err.Error()
	if !strings.Contains(msg, "whorl_") {
		return strings.Contains(msg, "no such column")
	}
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column")
}
