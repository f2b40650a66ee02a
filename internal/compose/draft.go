package compose

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/google/uuid"
)

// NewSurfaceID names a new compose surface.
func NewSurfaceID() string {
	return "cmp-" + uuid.NewString()
}

// OpenDraft loads the draft for surfaceID, creating an empty one when it
// does not exist yet.
func OpenDraft(conn *sql.DB, surfaceID string) (*types.Draft, error) {
	draft, err := db.GetDraft(conn, surfaceID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}
	created, err := db.CreateDraft(conn, types.Draft{SurfaceID: surfaceID})
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &created, nil
}

func saveDraft(conn *sql.DB, surfaceID, subject, body string) error {
	err := db.UpdateDraftContent(conn, surfaceID, subject, body)
	if !errors.Is(err, db.ErrDraftNotFound) {
		return err
	}
	_, err = db.CreateDraft(conn, types.Draft{SurfaceID: surfaceID, Subject: subject, Body: body})
	return err
}
