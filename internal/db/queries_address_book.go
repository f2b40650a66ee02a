package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
)

var (
	ErrNoEmails         = errors.New("contact has no email address")
	ErrContactNotFound  = errors.New("address book contact not found")
	ErrAmbiguousContact = errors.New("reference matches more than one contact")
)

// AddAddressBookContact stores a contact as a vCard.
func AddAddressBookContact(db DBTX, name string, emails []string) (types.AddressBookContact, error) {
	name = strings.TrimSpace(name)
	cleaned := make([]string, 0, len(emails))
	for _, email := range emails {
		if email = strings.TrimSpace(email); email != "" {
			cleaned = append(cleaned, email)
		}
	}
	if len(cleaned) == 0 {
		return types.AddressBookContact{}, ErrNoEmails
	}
	return insertAddressBookContact(db, name, cleaned, core.BuildVCard(name, cleaned))
}

// ImportVCards stores every card of a .vcf stream. Cards without an email
// address are skipped and counted, not fatal.
func ImportVCards(db *sql.DB, data string) (imported, skipped int, err error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, 0, err
	}
	for _, card := range core.SplitVCards(data) {
		parsed := core.ParseVCard(card)
		if len(parsed.Emails) == 0 {
			skipped++
			continue
		}
		if _, err := insertAddressBookContact(tx, parsed.Name, parsed.Emails, card); err != nil {
			_ = tx.Rollback()
			return 0, 0, err
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return imported, skipped, nil
}

func insertAddressBookContact(db DBTX, name string, emails []string, vcard string) (types.AddressBookContact, error) {
	guid, err := core.GenerateGUID("abk")
	if err != nil {
		return types.AddressBookContact{}, err
	}
	encoded, err := json.Marshal(emails)
	if err != nil {
		return types.AddressBookContact{}, err
	}
	search := strings.ToLower(name + "\n" + strings.Join(emails, "\n"))
	now := time.Now().Unix()
	if _, err := db.Exec(`
		INSERT INTO whorl_address_book (guid, name, emails, vcard, search_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, guid, name, string(encoded), vcard, search, now); err != nil {
		return types.AddressBookContact{}, err
	}
	return types.AddressBookContact{ID: guid, Name: name, Emails: emails, VCard: vcard, CreatedAt: now}, nil
}

// GetAddressBookContacts lists every stored contact by name.
func GetAddressBookContacts(db DBTX) ([]types.AddressBookContact, error) {
	return queryAddressBook(db, `
		SELECT guid, name, emails, vcard, created_at FROM whorl_address_book
		ORDER BY name COLLATE NOCASE, guid
	`)
}

// SearchAddressBook returns contacts whose name or any email contains query,
// ignoring case. An empty query returns everything.
func SearchAddressBook(db DBTX, query string) ([]types.AddressBookContact, error) {
	if query == "" {
		return GetAddressBookContacts(db)
	}
	return queryAddressBook(db, `
		SELECT guid, name, emails, vcard, created_at FROM whorl_address_book
		WHERE instr(search_text, ?) > 0
		ORDER BY name COLLATE NOCASE, guid
	`, strings.ToLower(query))
}

// RemoveAddressBookContact deletes a contact by GUID or short ID.
func RemoveAddressBookContact(db DBTX, ref string) (types.AddressBookContact, error) {
	all, err := GetAddressBookContacts(db)
	if err != nil {
		return types.AddressBookContact{}, err
	}
	var matches []types.AddressBookContact
	for _, contact := range all {
		if core.MatchesGUID(contact.ID, ref) {
			matches = append(matches, contact)
		}
	}
	switch len(matches) {
	case 0:
		return types.AddressBookContact{}, fmt.Errorf("%w: %s", ErrContactNotFound, ref)
	case 1:
	default:
		return types.AddressBookContact{}, fmt.Errorf("%w: %s", ErrAmbiguousContact, ref)
	}
	if _, err := db.Exec("DELETE FROM whorl_address_book WHERE guid = ?", matches[0].ID); err != nil {
		return types.AddressBookContact{}, err
	}
	return matches[0], nil
}

func queryAddressBook(db DBTX, query string, args ...any) ([]types.AddressBookContact, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []types.AddressBookContact
	for rows.Next() {
		var contact types.AddressBookContact
		var emails string
		if err := rows.Scan(&contact.ID, &contact.Name, &emails, &contact.VCard, &contact.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(emails), &contact.Emails); err != nil {
			log.Printf("warning: skipping address book entry %s: %v", contact.ID, err)
			continue
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// AddressBook serves address-book searches from the profile database.
type AddressBook struct {
	DB *sql.DB
}

func (a AddressBook) Search(ctx context.Context, query string) ([]types.AddressBookContact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SearchAddressBook(a.DB, query)
}
