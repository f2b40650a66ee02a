package core

import (
	"regexp"
	"strings"

	"github.com/adamavenir/whorl/internal/types"
)

var recipientRe = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^>]+@[^>]+)>?$`)

// Address is a parsed name/email pair.
type Address struct {
	Name  string
	Email string
}

// ParseRecipient extracts the name and email of a recipient entry.
// Structured entries are taken as-is; formatted strings must match
// `"Name" <email>`, `Name <email>`, `<email>` or a bare email.
func ParseRecipient(r types.Recipient) (Address, bool) {
	if r.Raw == "" {
		if r.Email == "" {
			return Address{}, false
		}
		return Address{Name: r.Name, Email: r.Email}, true
	}
	return ParseRecipientString(r.Raw)
}

// ParseRecipientString parses a formatted recipient string.
func ParseRecipientString(value string) (Address, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Address{}, false
	}
	// Without angle brackets the name group would swallow the local part.
	if !strings.ContainsAny(value, "<>") {
		if strings.Count(value, "@") == 0 || strings.ContainsAny(value, " \t\"") {
			return Address{}, false
		}
		return Address{Email: value}, true
	}
	match := recipientRe.FindStringSubmatch(value)
	if match == nil {
		return Address{}, false
	}
	return Address{
		Name:  strings.TrimSpace(match[1]),
		Email: strings.TrimSpace(match[2]),
	}, true
}

// FormatRecipient renders `Name <email>`, or the bare email without a name.
func FormatRecipient(name, email string) string {
	if name == "" {
		return email
	}
	return name + " <" + email + ">"
}

// SameEmail compares addresses case-insensitively.
func SameEmail(a, b string) bool {
	return strings.EqualFold(a, b)
}
