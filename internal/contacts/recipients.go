package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
)

var ErrNoHost = errors.New("no compose host")

// EnsureRecipientInTo makes email a To recipient of the surface: nothing
// happens if it already is; otherwise it is removed from Cc and Bcc and
// appended to To as `Name <email>`.
func EnsureRecipientInTo(ctx context.Context, host ComposeHost, surfaceID, email, name string) error {
	if host == nil {
		return ErrNoHost
	}
	details, err := host.GetComposeRecipients(ctx, surfaceID)
	if err != nil {
		return fmt.Errorf("read recipients: %w", err)
	}
	if containsEmail(details.To, email) {
		return nil
	}

	updated := types.ComposeDetails{
		To:  append(append([]types.Recipient(nil), details.To...), types.RecipientString(core.FormatRecipient(name, email))),
		Cc:  withoutEmail(details.Cc, email),
		Bcc: withoutEmail(details.Bcc, email),
	}
	if err := host.SetComposeRecipients(ctx, surfaceID, updated); err != nil {
		return fmt.Errorf("write recipients: %w", err)
	}
	return nil
}

func containsEmail(list []types.Recipient, email string) bool {
	for _, r := range list {
		if addr, ok := core.ParseRecipient(r); ok && core.SameEmail(addr.Email, email) {
			return true
		}
	}
	return false
}

// withoutEmail drops entries for email; entries that do not parse are kept.
func withoutEmail(list []types.Recipient, email string) []types.Recipient {
	out := make([]types.Recipient, 0, len(list))
	for _, r := range list {
		if addr, ok := core.ParseRecipient(r); ok && core.SameEmail(addr.Email, email) {
			continue
		}
		out = append(out, r)
	}
	return out
}
