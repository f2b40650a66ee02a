package bridge

import (
	"database/sql"

	"github.com/adamavenir/whorl/internal/contacts"
	"github.com/adamavenir/whorl/internal/db"
)

// ForProfile wires a service over the profile database: drafts stand in for
// open compose windows and the vCard table is the address book.
func ForProfile(conn *sql.DB, settings SettingsSource) *Service {
	drafts := db.Drafts{DB: conn}
	return NewService(contacts.NewAggregator(drafts, db.AddressBook{DB: conn}), drafts, settings)
}
