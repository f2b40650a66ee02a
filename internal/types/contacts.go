package types

import (
	"encoding/json"
	"strings"
)

// Candidate is a name/email pair offered in the mention dropdown.
type Candidate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsRecipient bool   `json:"isRecipient"`
}

// Key returns the identity used for deduplication.
func (c Candidate) Key() string {
	return strings.ToLower(c.Email)
}

// DisplayName returns the name, falling back to the email.
func (c Candidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}

// Recipient is one entry of a draft's To/Cc/Bcc list. Hosts hand these over
// either as structured {name, email} objects or as formatted strings such as
// `Ada Lovelace <ada@example.com>`; Raw holds the latter form.
type Recipient struct {
	Name  string
	Email string
	Raw   string
}

// RecipientString builds a formatted-string recipient.
func RecipientString(raw string) Recipient {
	return Recipient{Raw: raw}
}

// IsStructured reports whether the entry carried an explicit email field.
func (r Recipient) IsStructured() bool {
	return r.Raw == "" && r.Email != ""
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	if r.Raw != "" || r.Email == "" {
		return json.Marshal(r.Raw)
	}
	return json.Marshal(struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}{r.Name, r.Email})
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*r = Recipient{Raw: raw}
		return nil
	}
	var structured struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*r = Recipient{Name: structured.Name, Email: structured.Email}
	return nil
}

// ComposeDetails holds the recipient fields of one compose surface.
type ComposeDetails struct {
	To  []Recipient `json:"to"`
	Cc  []Recipient `json:"cc"`
	Bcc []Recipient `json:"bcc"`
}

// AddressBookContact is a host contact record. Hosts either fill Name and
// Emails directly or hand over the raw vCard.
type AddressBookContact struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Emails    []string `json:"emails,omitempty"`
	VCard     string   `json:"vcard,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

// CustomContact is a user-defined contact stored with the settings.
type CustomContact struct {
	Name  string `json:"name" toml:"name"`
	Email string `json:"email" toml:"email"`
}
