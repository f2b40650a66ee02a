package command

import (
	"fmt"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

// NewContactsCmd manages custom contacts.
func NewContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage custom contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listContacts(cmd)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List custom contacts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listContacts(cmd)
			},
		},
		&cobra.Command{
			Use:   "add <name> <email>",
			Short: "Add a custom contact",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, err := GetContext(cmd)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer ctx.DB.Close()

				contact, err := db.AddCustomContact(ctx.DB, args[0], args[1])
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if ctx.JSONMode {
					return writeJSON(cmd, contact)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", core.FormatRecipient(contact.Name, contact.Email))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <email>",
			Short: "Remove a custom contact",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, err := GetContext(cmd)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer ctx.DB.Close()

				removed, err := db.RemoveCustomContact(ctx.DB, args[0])
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if !removed {
					return writeCommandError(cmd, fmt.Errorf("no custom contact with email %s", args[0]))
				}
				if ctx.JSONMode {
					return writeJSON(cmd, map[string]string{"removed": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func listContacts(cmd *cobra.Command) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer ctx.DB.Close()

	contacts, err := db.GetCustomContacts(ctx.DB)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if ctx.JSONMode {
		return writeJSON(cmd, contacts)
	}
	out := cmd.OutOrStdout()
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No custom contacts")
		return nil
	}
	fmt.Fprintf(out, "Custom contacts (%d):\n", len(contacts))
	for _, c := range contacts {
		fmt.Fprintf(out, "  %s\n", core.FormatRecipient(c.Name, c.Email))
	}
	return nil
}
