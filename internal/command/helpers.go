package command

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}

func formatRelative(ts int64) string {
	if ts <= 0 {
		return "unknown"
	}
	return humanize.Time(time.Unix(ts, 0))
}

func splitCommaList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// recipientsFromFlag turns repeated or comma-separated flag values into
// string recipients.
func recipientsFromFlag(values []string) []types.Recipient {
	out := []types.Recipient{}
	for _, value := range values {
		for _, item := range splitCommaList(value) {
			out = append(out, types.RecipientString(item))
		}
	}
	return out
}

func formatRecipientList(list []types.Recipient) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(list))
	for _, r := range list {
		if r.IsStructured() {
			parts = append(parts, core.FormatRecipient(r.Name, r.Email))
			continue
		}
		parts = append(parts, r.Raw)
	}
	return strings.Join(parts, ", ")
}
