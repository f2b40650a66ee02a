package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/adamavenir/whorl/internal/compose"
	"github.com/adamavenir/whorl/internal/contacts"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/spf13/cobra"
)

// NewDraftsCmd manages stored drafts and their recipient fields.
func NewDraftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage drafts and their recipients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDrafts(cmd)
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDrafts(cmd)
		},
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			draft, err := db.CreateDraft(ctx.DB, draftFromFlags(cmd, compose.NewSurfaceID()))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, draft)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created draft %s\n", draft.SurfaceID)
			return nil
		},
	}
	addDraftFlags(newCmd)

	show := &cobra.Command{
		Use:   "show <surface-id>",
		Short: "Show a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			draft, err := db.GetDraft(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if draft == nil {
				return writeCommandError(cmd, fmt.Errorf("%w: %s", db.ErrDraftNotFound, args[0]))
			}
			if ctx.JSONMode {
				return writeJSON(cmd, draft)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "To:      %s\n", formatRecipientList(draft.Recipients.To))
			fmt.Fprintf(out, "Cc:      %s\n", formatRecipientList(draft.Recipients.Cc))
			fmt.Fprintf(out, "Bcc:     %s\n", formatRecipientList(draft.Recipients.Bcc))
			fmt.Fprintf(out, "Subject: %s\n", draft.Subject)
			if draft.Body != "" {
				fmt.Fprintf(out, "\n%s\n", draft.Body)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <surface-id>",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			removed, err := db.DeleteDraft(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if !removed {
				return writeCommandError(cmd, fmt.Errorf("%w: %s", db.ErrDraftNotFound, args[0]))
			}
			if ctx.JSONMode {
				return writeJSON(cmd, map[string]string{"removed": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", args[0])
			return nil
		},
	}

	ensure := &cobra.Command{
		Use:   "to <surface-id> <email> [name]",
		Short: "Make an address a To recipient, moving it out of Cc/Bcc",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			name := ""
			if len(args) == 3 {
				name = strings.TrimSpace(args[2])
			}
			host := db.Drafts{DB: ctx.DB}
			if err := contacts.EnsureRecipientInTo(context.Background(), host, args[0], strings.TrimSpace(args[1]), name); err != nil {
				return writeCommandError(cmd, err)
			}
			details, err := host.GetComposeRecipients(context.Background(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, details)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "To: %s\n", formatRecipientList(details.To))
			return nil
		},
	}

	cmd.AddCommand(ls, newCmd, show, rm, ensure)
	return cmd
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("to", nil, "To recipients (repeatable or comma-separated)")
	cmd.Flags().StringArray("cc", nil, "Cc recipients")
	cmd.Flags().StringArray("bcc", nil, "Bcc recipients")
	cmd.Flags().String("subject", "", "draft subject")
}

func draftFromFlags(cmd *cobra.Command, surfaceID string) types.Draft {
	to, _ := cmd.Flags().GetStringArray("to")
	cc, _ := cmd.Flags().GetStringArray("cc")
	bcc, _ := cmd.Flags().GetStringArray("bcc")
	subject, _ := cmd.Flags().GetString("subject")
	return types.Draft{
		SurfaceID: surfaceID,
		Subject:   subject,
		Recipients: types.ComposeDetails{
			To:  recipientsFromFlag(to),
			Cc:  recipientsFromFlag(cc),
			Bcc: recipientsFromFlag(bcc),
		},
	}
}

func listDrafts(cmd *cobra.Command) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer ctx.DB.Close()

	drafts, err := db.GetDrafts(ctx.DB)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if ctx.JSONMode {
		return writeJSON(cmd, drafts)
	}
	out := cmd.OutOrStdout()
	if len(drafts) == 0 {
		fmt.Fprintln(out, "No drafts")
		return nil
	}
	for _, d := range drafts {
		subject := d.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		fmt.Fprintf(out, "  %s  %s · to %s · updated %s\n", d.SurfaceID, subject, formatRecipientList(d.Recipients.To), formatRelative(d.UpdatedAt))
	}
	return nil
}
