package types

const (
	DefaultTriggerCharacter = "@"
	DefaultMaxResults       = 10
)

// Settings is the persisted configuration record. It is read and written
// wholesale; running surfaces only ever see copies of it.
type Settings struct {
	TriggerCharacter     string          `json:"triggerCharacter" toml:"trigger_character"`
	MaxResults           int             `json:"maxResults" toml:"max_results"`
	AutoAddRecipient     bool            `json:"autoAddRecipient" toml:"auto_add_recipient"`
	SearchAddressBooks   bool            `json:"searchAddressBooks" toml:"search_address_books"`
	SearchRecipients     bool            `json:"searchRecipients" toml:"search_recipients"`
	SearchCustomContacts bool            `json:"searchCustomContacts" toml:"search_custom_contacts"`
	CustomContacts       []CustomContact `json:"customContacts" toml:"custom_contacts"`
	Blocklist            []string        `json:"blocklist" toml:"blocklist"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		TriggerCharacter:     DefaultTriggerCharacter,
		MaxResults:           DefaultMaxResults,
		AutoAddRecipient:     true,
		SearchAddressBooks:   true,
		SearchRecipients:     true,
		SearchCustomContacts: true,
		CustomContacts:       []CustomContact{},
		Blocklist:            []string{},
	}
}

// Clone returns a deep copy so callers can hold an immutable snapshot.
func (s Settings) Clone() Settings {
	out := s
	out.CustomContacts = append([]CustomContact(nil), s.CustomContacts...)
	out.Blocklist = append([]string(nil), s.Blocklist...)
	if out.CustomContacts == nil {
		out.CustomContacts = []CustomContact{}
	}
	if out.Blocklist == nil {
		out.Blocklist = []string{}
	}
	return out
}

// Trigger returns the first rune of the trigger character, defaulting to '@'.
func (s Settings) Trigger() rune {
	for _, r := range s.TriggerCharacter {
		return r
	}
	return '@'
}

// Limit returns the effective maximum result count.
func (s Settings) Limit() int {
	if s.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return s.MaxResults
}
