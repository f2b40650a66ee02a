package db

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
)

// ExportSettingsTOML writes the whole settings record as TOML.
func ExportSettingsTOML(db DBTX, w io.Writer) error {
	settings, err := LoadSettings(db)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "# whorl settings")
	fmt.Fprintln(w, "")
	if err := toml.NewEncoder(w).Encode(settings); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

// DecodeSettingsTOML parses a settings file. Keys absent from the file keep
// their defaults; contacts and blocklist entries go through the same checks
// as when they are added one by one.
func DecodeSettingsTOML(r io.Reader) (types.Settings, error) {
	settings := types.DefaultSettings()
	if _, err := toml.NewDecoder(r).Decode(&settings); err != nil {
		return types.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return normalizeSettings(settings)
}

// ImportSettingsTOML replaces the stored settings with a TOML file.
func ImportSettingsTOML(db *sql.DB, r io.Reader) (types.Settings, error) {
	settings, err := DecodeSettingsTOML(r)
	if err != nil {
		return types.Settings{}, err
	}
	if err := SaveSettings(db, settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

func normalizeSettings(in types.Settings) (types.Settings, error) {
	out := in.Clone()
	if strings.TrimSpace(out.TriggerCharacter) == "" {
		out.TriggerCharacter = types.DefaultTriggerCharacter
	}
	out.MaxResults = in.Limit()

	seen := map[string]struct{}{}
	contacts := make([]types.CustomContact, 0, len(in.CustomContacts))
	for _, c := range in.CustomContacts {
		c.Name = strings.TrimSpace(c.Name)
		c.Email = strings.TrimSpace(c.Email)
		if c.Name == "" || c.Email == "" {
			return types.Settings{}, fmt.Errorf("custom contact %q: %w", c.Email, ErrContactNameRequired)
		}
		if !core.IsValidEmail(c.Email) {
			return types.Settings{}, fmt.Errorf("%w: %s", ErrInvalidEmail, c.Email)
		}
		key := strings.ToLower(c.Email)
		if _, ok := seen[key]; ok {
			return types.Settings{}, fmt.Errorf("%w: %s", ErrDuplicateContact, c.Email)
		}
		seen[key] = struct{}{}
		contacts = append(contacts, c)
	}
	out.CustomContacts = contacts

	entries := map[string]struct{}{}
	blocklist := make([]string, 0, len(in.Blocklist))
	for _, entry := range in.Blocklist {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, ok := entries[entry]; ok {
			continue
		}
		entries[entry] = struct{}{}
		blocklist = append(blocklist, entry)
	}
	out.Blocklist = blocklist
	return out, nil
}
