package db

import (
	"database/sql"

	"github.com/adamavenir/whorl/internal/core"
)

// OpenDatabase opens the profile database, creating the schema on first use.
func OpenDatabase(profile core.Profile) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", profile.DBPath)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
