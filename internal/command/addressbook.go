package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/spf13/cobra"
)

// NewAddressBookCmd manages the local address book.
func NewAddressBookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "addressbook",
		Aliases: []string{"ab"},
		Short:   "Manage the address book",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAddressBook(cmd, "")
		},
	}

	ls := &cobra.Command{
		Use:   "ls [query]",
		Short: "List address book entries, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return listAddressBook(cmd, query)
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <email>...",
		Short: "Add an address book entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			emails := args[1:]
			for _, email := range emails {
				if !core.IsValidEmail(strings.TrimSpace(email)) {
					return writeCommandError(cmd, fmt.Errorf("%w: %s", db.ErrInvalidEmail, email))
				}
			}
			contact, err := db.AddAddressBookContact(ctx.DB, args[0], emails)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, contact)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s [%s]\n", contact.Name, core.ShortID(contact.ID))
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.vcf>",
		Short: "Import contacts from a vCard file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			imported, skipped, err := db.ImportVCards(ctx.DB, string(data))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, map[string]int{"imported": imported, "skipped": skipped})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contacts", imported)
			if skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d without an email skipped)", skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an address book entry by ID or ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			removed, err := db.RemoveAddressBookContact(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, removed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s [%s]\n", addressBookName(removed), core.ShortID(removed.ID))
			return nil
		},
	}

	cmd.AddCommand(ls, add, importCmd, rm)
	return cmd
}

func listAddressBook(cmd *cobra.Command, query string) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer ctx.DB.Close()

	entries, err := db.SearchAddressBook(ctx.DB, query)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if ctx.JSONMode {
		return writeJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No address book entries")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(out, "  [%s] %s <%s> · added %s\n",
			core.ShortID(entry.ID), addressBookName(entry), strings.Join(addressBookEmails(entry), ", "), formatRelative(entry.CreatedAt))
	}
	return nil
}

func addressBookName(entry types.AddressBookContact) string {
	if entry.VCard != "" {
		if card := core.ParseVCard(entry.VCard); card.Name != "" {
			return card.Name
		}
	}
	return entry.Name
}

func addressBookEmails(entry types.AddressBookContact) []string {
	if entry.VCard != "" {
		if card := core.ParseVCard(entry.VCard); len(card.Emails) > 0 {
			return card.Emails
		}
	}
	return entry.Emails
}
