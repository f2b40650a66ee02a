package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
	"modernc.org/sqlite"
)

const (
	sqliteConstraint = 19
)

var (
	ErrUnknownSetting          = errors.New("unknown setting")
	ErrContactNameRequired     = errors.New("name and email are required")
	ErrInvalidEmail            = errors.New("invalid email address")
	ErrDuplicateContact        = errors.New("a contact with this email already exists")
	ErrEmptyBlocklistEntry     = errors.New("blocklist entry is empty")
	ErrDuplicateBlocklistEntry = errors.New("entry already in blocklist")
)

// Setting keys as stored in whorl_settings.
const (
	KeyTriggerCharacter     = "trigger_character"
	KeyMaxResults           = "max_results"
	KeyAutoAddRecipient     = "auto_add_recipient"
	KeySearchAddressBooks   = "search_address_books"
	KeySearchRecipients     = "search_recipients"
	KeySearchCustomContacts = "search_custom_contacts"
)

// SettingKeys lists the scalar settings in display order.
var SettingKeys = []string{
	KeyTriggerCharacter,
	KeyMaxResults,
	KeyAutoAddRecipient,
	KeySearchAddressBooks,
	KeySearchRecipients,
	KeySearchCustomContacts,
}

// LoadSettings reads the whole settings record. Missing or unparsable values
// fall back to defaults.
func LoadSettings(db DBTX) (types.Settings, error) {
	settings := types.DefaultSettings()

	rows, err := db.Query("SELECT key, value FROM whorl_settings")
	if err != nil {
		return settings, err
	}
	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return settings, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return settings, err
	}
	rows.Close()

	for key, value := range values {
		_ = applySetting(&settings, key, value)
	}

	contacts, err := GetCustomContacts(db)
	if err != nil {
		return settings, err
	}
	settings.CustomContacts = contacts

	blocklist, err := GetBlocklist(db)
	if err != nil {
		return settings, err
	}
	settings.Blocklist = blocklist
	return settings, nil
}

// SaveSettings replaces the whole settings record in one transaction.
func SaveSettings(db *sql.DB, settings types.Settings) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := saveSettingsWith(tx, settings); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveSettingsWith(db DBTX, settings types.Settings) error {
	for key, value := range SettingValues(settings) {
		if _, err := db.Exec("INSERT OR REPLACE INTO whorl_settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}
	if _, err := db.Exec("DELETE FROM whorl_custom_contacts"); err != nil {
		return err
	}
	for i, contact := range settings.CustomContacts {
		if _, err := db.Exec(`
			INSERT OR IGNORE INTO whorl_custom_contacts (email_key, name, email, position)
			VALUES (?, ?, ?, ?)
		`, strings.ToLower(contact.Email), contact.Name, contact.Email, i); err != nil {
			return err
		}
	}
	if _, err := db.Exec("DELETE FROM whorl_blocklist"); err != nil {
		return err
	}
	for i, entry := range settings.Blocklist {
		if _, err := db.Exec("INSERT OR IGNORE INTO whorl_blocklist (entry, position) VALUES (?, ?)", entry, i); err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns the stored text of one scalar setting.
func GetSetting(db DBTX, key string) (string, error) {
	if !knownSetting(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	settings, err := LoadSettings(db)
	if err != nil {
		return "", err
	}
	return SettingValues(settings)[key], nil
}

// SetSetting parses and stores one scalar setting. Values are normalised the
// way the options form does: an empty trigger becomes "@", an unparsable
// result limit becomes 10.
func SetSetting(db DBTX, key, value string) error {
	if !knownSetting(key) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	settings := types.DefaultSettings()
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}
	_, err := db.Exec("INSERT OR REPLACE INTO whorl_settings (key, value) VALUES (?, ?)", key, SettingValues(settings)[key])
	return err
}

func knownSetting(key string) bool {
	for _, known := range SettingKeys {
		if key == known {
			return true
		}
	}
	return false
}

func applySetting(settings *types.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyTriggerCharacter:
		if value == "" {
			value = types.DefaultTriggerCharacter
		}
		settings.TriggerCharacter = value
	case KeyMaxResults:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			n = types.DefaultMaxResults
		}
		settings.MaxResults = n
	case KeyAutoAddRecipient, KeySearchAddressBooks, KeySearchRecipients, KeySearchCustomContacts:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		switch key {
		case KeyAutoAddRecipient:
			settings.AutoAddRecipient = b
		case KeySearchAddressBooks:
			settings.SearchAddressBooks = b
		case KeySearchRecipients:
			settings.SearchRecipients = b
		default:
			settings.SearchCustomContacts = b
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return nil
}

// SettingValues renders the scalar settings as stored text.
func SettingValues(s types.Settings) map[string]string {
	trigger := s.TriggerCharacter
	if trigger == "" {
		trigger = types.DefaultTriggerCharacter
	}
	return map[string]string{
		KeyTriggerCharacter:     trigger,
		KeyMaxResults:           strconv.Itoa(s.Limit()),
		KeyAutoAddRecipient:     strconv.FormatBool(s.AutoAddRecipient),
		KeySearchAddressBooks:   strconv.FormatBool(s.SearchAddressBooks),
		KeySearchRecipients:     strconv.FormatBool(s.SearchRecipients),
		KeySearchCustomContacts: strconv.FormatBool(s.SearchCustomContacts),
	}
}

// GetCustomContacts returns custom contacts in insertion order.
func GetCustomContacts(db DBTX) ([]types.CustomContact, error) {
	rows, err := db.Query("SELECT name, email FROM whorl_custom_contacts ORDER BY position, email_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []types.CustomContact{}
	for rows.Next() {
		var contact types.CustomContact
		if err := rows.Scan(&contact.Name, &contact.Email); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// AddCustomContact validates and appends a custom contact.
func AddCustomContact(db DBTX, name, email string) (types.CustomContact, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return types.CustomContact{}, ErrContactNameRequired
	}
	if !core.IsValidEmail(email) {
		return types.CustomContact{}, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	_, err := db.Exec(`
		INSERT INTO whorl_custom_contacts (email_key, name, email, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM whorl_custom_contacts))
	`, strings.ToLower(email), name, email)
	if err != nil {
		if isConstraintError(err) {
			return types.CustomContact{}, fmt.Errorf("%w: %s", ErrDuplicateContact, email)
		}
		return types.CustomContact{}, err
	}
	return types.CustomContact{Name: name, Email: email}, nil
}

// RemoveCustomContact deletes a custom contact by email, ignoring case.
func RemoveCustomContact(db DBTX, email string) (bool, error) {
	result, err := db.Exec("DELETE FROM whorl_custom_contacts WHERE email_key = ?", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetBlocklist returns blocklist entries in insertion order.
func GetBlocklist(db DBTX) ([]string, error) {
	rows, err := db.Query("SELECT entry FROM whorl_blocklist ORDER BY position, entry")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []string{}
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddBlocklistEntry appends a trimmed entry; exact duplicates are rejected.
func AddBlocklistEntry(db DBTX, entry string) (string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", ErrEmptyBlocklistEntry
	}
	_, err := db.Exec(`
		INSERT INTO whorl_blocklist (entry, position)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM whorl_blocklist))
	`, entry)
	if err != nil {
		if isConstraintError(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateBlocklistEntry, entry)
		}
		return "", err
	}
	return entry, nil
}

// RemoveBlocklistEntry deletes an entry.
func RemoveBlocklistEntry(db DBTX, entry string) (bool, error) {
	result, err := db.Exec("DELETE FROM whorl_blocklist WHERE entry = ?", strings.TrimSpace(entry))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// extended codes (UNIQUE 2067, PRIMARYKEY 1555, ...) keep the
		// primary code in the low byte
		return sqliteErr.Code()&0xff == sqliteConstraint
	}
	return false
}
