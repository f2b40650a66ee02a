package bridge

import (
	"context"
	"log"

	"github.com/adamavenir/whorl/internal/mention"
	"github.com/adamavenir/whorl/internal/types"
)

var (
	_ mention.ContactSource  = (*Client)(nil)
	_ mention.RecipientSink  = (*Client)(nil)
	_ mention.SettingsSource = (*Client)(nil)
)

// Client is a surface's end of the bridge.
type Client struct {
	service   *Service
	surfaceID string
}

// SurfaceID returns the surface the client speaks for.
func (c *Client) SurfaceID() string {
	return c.surfaceID
}

func (c *Client) GetContacts(ctx context.Context, query string) ([]types.Candidate, error) {
	resp, err := c.service.Send(ctx, Envelope{Kind: KindGetContacts, SurfaceID: c.surfaceID, Query: query})
	if err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

func (c *Client) EnsureRecipientInTo(ctx context.Context, email, name string) error {
	_, err := c.service.Send(ctx, Envelope{Kind: KindEnsureRecipient, SurfaceID: c.surfaceID, Email: email, Name: name})
	return err
}

// Settings asks the service for the current snapshot, falling back to
// defaults when the service is gone.
func (c *Client) Settings() types.Settings {
	resp, err := c.service.Send(context.Background(), Envelope{Kind: KindGetSettings, SurfaceID: c.surfaceID})
	if err != nil {
		log.Printf("warning: get settings: %v", err)
		return types.DefaultSettings()
	}
	return resp.Settings
}
