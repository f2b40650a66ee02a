package db

import "database/sql"

const schemaSQL = `
-- Scalar settings (trigger character, limits, source toggles)
CREATE TABLE IF NOT EXISTS whorl_settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

-- User-defined contacts, kept in insertion order
CREATE TABLE IF NOT EXISTS whorl_custom_contacts (
  email_key TEXT PRIMARY KEY,          -- lowercased email
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  position INTEGER NOT NULL
);

-- Blocklist entries (substrings or glob patterns)
CREATE TABLE IF NOT EXISTS whorl_blocklist (
  entry TEXT PRIMARY KEY,
  position INTEGER NOT NULL
);

-- Local address book
CREATE TABLE IF NOT EXISTS whorl_address_book (
  guid TEXT PRIMARY KEY,               -- e.g., "abk-3k9x0q2z"
  name TEXT NOT NULL DEFAULT '',
  emails TEXT NOT NULL DEFAULT '[]',   -- JSON array, lowercased copy in search_text
  vcard TEXT NOT NULL,
  search_text TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_whorl_address_book_name ON whorl_address_book(name);

-- Compose drafts; surface_id is the editing surface that owns the draft
CREATE TABLE IF NOT EXISTS whorl_drafts (
  surface_id TEXT PRIMARY KEY,
  subject TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL DEFAULT '',
  to_recipients TEXT NOT NULL DEFAULT '[]',
  cc_recipients TEXT NOT NULL DEFAULT '[]',
  bcc_recipients TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_whorl_drafts_updated ON whorl_drafts(updated_at);
`

const defaultSettingsSQL = `
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('trigger_character', '@');
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('max_results', '10');
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('auto_add_recipient', 'true');
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('search_address_books', 'true');
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('search_recipients', 'true');
INSERT OR IGNORE INTO whorl_settings (key, value) VALUES ('search_custom_contacts', 'true');
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema creates tables and default settings.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := initSchemaWith(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func initSchemaWith(db DBTX) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	if _, err := db.Exec(defaultSettingsSQL); err != nil {
		return err
	}
	return nil
}

// SchemaExists reports whether the whorl schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='whorl_settings'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
