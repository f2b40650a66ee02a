package command

import (
	"context"
	"fmt"

	"github.com/adamavenir/whorl/internal/contacts"
	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

// NewQueryCmd shows what the dropdown would offer for a query.
func NewQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <surface-id> [text]",
		Short: "Show mention candidates for a draft",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			settings, err := db.LoadSettings(ctx.DB)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			aggregator := contacts.NewAggregator(db.Drafts{DB: ctx.DB}, db.AddressBook{DB: ctx.DB})
			candidates := aggregator.Query(context.Background(), args[0], text, settings)

			if ctx.JSONMode {
				return writeJSON(cmd, candidates)
			}
			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for _, c := range candidates {
				marker := " "
				if c.IsRecipient {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, core.FormatRecipient(c.Name, c.Email))
			}
			return nil
		},
	}
}
