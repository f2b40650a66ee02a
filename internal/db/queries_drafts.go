package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adamavenir/whorl/internal/types"
)

var ErrDraftNotFound = errors.New("draft not found")

// CreateDraft inserts a new draft. Timestamps are filled in when zero.
func CreateDraft(db DBTX, draft types.Draft) (types.Draft, error) {
	now := time.Now().Unix()
	if draft.CreatedAt == 0 {
		draft.CreatedAt = now
	}
	if draft.UpdatedAt == 0 {
		draft.UpdatedAt = now
	}
	to, cc, bcc, err := encodeRecipients(draft.Recipients)
	if err != nil {
		return types.Draft{}, err
	}
	_, err = db.Exec(`
		INSERT INTO whorl_drafts (surface_id, subject, body, to_recipients, cc_recipients, bcc_recipients, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, draft.SurfaceID, draft.Subject, draft.Body, to, cc, bcc, draft.CreatedAt, draft.UpdatedAt)
	if err != nil {
		return types.Draft{}, err
	}
	return draft, nil
}

// GetDraft returns a draft, or nil when none exists.
func GetDraft(db DBTX, surfaceID string) (*types.Draft, error) {
	row := db.QueryRow(`
		SELECT surface_id, subject, body, to_recipients, cc_recipients, bcc_recipients, created_at, updated_at
		FROM whorl_drafts WHERE surface_id = ?
	`, surfaceID)
	draft, err := scanDraft(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

// GetDrafts lists drafts, most recently updated first.
func GetDrafts(db DBTX) ([]types.Draft, error) {
	rows, err := db.Query(`
		SELECT surface_id, subject, body, to_recipients, cc_recipients, bcc_recipients, created_at, updated_at
		FROM whorl_drafts ORDER BY updated_at DESC, surface_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []types.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// UpdateDraftContent stores subject and body.
func UpdateDraftContent(db DBTX, surfaceID, subject, body string) error {
	result, err := db.Exec(`
		UPDATE whorl_drafts SET subject = ?, body = ?, updated_at = ? WHERE surface_id = ?
	`, subject, body, time.Now().Unix(), surfaceID)
	if err != nil {
		return err
	}
	return requireRow(result, surfaceID)
}

// UpdateDraftRecipients replaces all three recipient fields.
func UpdateDraftRecipients(db DBTX, surfaceID string, details types.ComposeDetails) error {
	to, cc, bcc, err := encodeRecipients(details)
	if err != nil {
		return err
	}
	result, err := db.Exec(`
		UPDATE whorl_drafts SET to_recipients = ?, cc_recipients = ?, bcc_recipients = ?, updated_at = ?
		WHERE surface_id = ?
	`, to, cc, bcc, time.Now().Unix(), surfaceID)
	if err != nil {
		return err
	}
	return requireRow(result, surfaceID)
}

// DeleteDraft removes a draft.
func DeleteDraft(db DBTX, surfaceID string) (bool, error) {
	result, err := db.Exec("DELETE FROM whorl_drafts WHERE surface_id = ?", surfaceID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireRow(result sql.Result, surfaceID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, surfaceID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (types.Draft, error) {
	var draft types.Draft
	var to, cc, bcc string
	if err := row.Scan(&draft.SurfaceID, &draft.Subject, &draft.Body, &to, &cc, &bcc, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return types.Draft{}, err
	}
	var err error
	if draft.Recipients.To, err = decodeRecipients(to); err != nil {
		return types.Draft{}, fmt.Errorf("draft %s to: %w", draft.SurfaceID, err)
	}
	if draft.Recipients.Cc, err = decodeRecipients(cc); err != nil {
		return types.Draft{}, fmt.Errorf("draft %s cc: %w", draft.SurfaceID, err)
	}
	if draft.Recipients.Bcc, err = decodeRecipients(bcc); err != nil {
		return types.Draft{}, fmt.Errorf("draft %s bcc: %w", draft.SurfaceID, err)
	}
	return draft, nil
}

func encodeRecipients(details types.ComposeDetails) (string, string, string, error) {
	var out [3]string
	for i, list := range [][]types.Recipient{details.To, details.Cc, details.Bcc} {
		if list == nil {
			list = []types.Recipient{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return "", "", "", err
		}
		out[i] = string(data)
	}
	return out[0], out[1], out[2], nil
}

func decodeRecipients(value string) ([]types.Recipient, error) {
	if value == "" {
		return []types.Recipient{}, nil
	}
	var list []types.Recipient
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []types.Recipient{}
	}
	return list, nil
}

// Drafts exposes stored drafts as compose surfaces.
type Drafts struct {
	DB *sql.DB
}

func (d Drafts) GetComposeRecipients(ctx context.Context, surfaceID string) (types.ComposeDetails, error) {
	if err := ctx.Err(); err != nil {
		return types.ComposeDetails{}, err
	}
	draft, err := GetDraft(d.DB, surfaceID)
	if err != nil {
		return types.ComposeDetails{}, err
	}
	if draft == nil {
		return types.ComposeDetails{}, fmt.Errorf("%w: %s", ErrDraftNotFound, surfaceID)
	}
	return draft.Recipients, nil
}

func (d Drafts) SetComposeRecipients(ctx context.Context, surfaceID string, details types.ComposeDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return UpdateDraftRecipients(d.DB, surfaceID, details)
}
