package mention

import (
	"context"
	"fmt"
	"log"

	"github.com/adamavenir/whorl/internal/document"
	"github.com/adamavenir/whorl/internal/types"
)

// Session is the state of one autocomplete session. When Active is false the
// range is nil, there are no candidates and SelectedIndex is -1.
type Session struct {
	Active        bool
	Query         string
	Range         *document.Range
	Candidates    []types.Candidate
	SelectedIndex int
	Generation    uint64
}

func idleSession() Session {
	return Session{SelectedIndex: -1}
}

// FetchRequest asks the host for candidates matching Query.
type FetchRequest struct {
	Generation uint64
	Query      string
}

// FetchResult carries candidates back to the editor.
type FetchResult struct {
	Generation uint64
	Candidates []types.Candidate
	Err        error
}

// RecipientRequest asks the host to promote an address into To.
type RecipientRequest struct {
	Email string
	Name  string
}

// ContactSource answers candidate queries.
type ContactSource interface {
	GetContacts(ctx context.Context, query string) ([]types.Candidate, error)
}

// RecipientSink adjusts the draft's recipient fields.
type RecipientSink interface {
	EnsureRecipientInTo(ctx context.Context, email, name string) error
}

// SettingsSource hands out settings snapshots.
type SettingsSource interface {
	Settings() types.Settings
}

// Fetch runs a fetch request against src. Failures, panics included, come
// back in the result so the editor can hide the dropdown.
func Fetch(ctx context.Context, src ContactSource, req FetchRequest) (result FetchResult) {
	result.Generation = req.Generation
	defer func() {
		if r := recover(); r != nil {
			result.Candidates = nil
			result.Err = fmt.Errorf("contact source panicked: %v", r)
		}
	}()
	if src == nil {
		return result
	}
	candidates, err := src.GetContacts(ctx, req.Query)
	result.Candidates = candidates
	result.Err = err
	return result
}

// EnsureRecipient runs a recipient request. Errors are logged and dropped;
// the mention already in the document stays.
func EnsureRecipient(ctx context.Context, sink RecipientSink, req RecipientRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("warning: ensure recipient %s panicked: %v", req.Email, r)
		}
	}()
	if sink == nil {
		return
	}
	if err := sink.EnsureRecipientInTo(ctx, req.Email, req.Name); err != nil {
		log.Printf("warning: ensure recipient %s in To: %v", req.Email, err)
	}
}
