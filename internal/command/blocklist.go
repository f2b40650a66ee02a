package command

import (
	"fmt"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

// NewBlocklistCmd manages the blocklist.
func NewBlocklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Manage entries hidden from suggestions",
		Long: `Manage entries hidden from suggestions.

An entry hides every contact whose name or email contains it, ignoring case.
Entries with * or ? are matched as globs against the whole email or name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBlocklist(cmd)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List blocklist entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listBlocklist(cmd)
			},
		},
		&cobra.Command{
			Use:   "add <entry>",
			Short: "Add a blocklist entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, err := GetContext(cmd)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer ctx.DB.Close()

				entry, err := db.AddBlocklistEntry(ctx.DB, args[0])
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if ctx.JSONMode {
					return writeJSON(cmd, map[string]string{"added": entry})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s\n", entry)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <entry>",
			Short: "Remove a blocklist entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, err := GetContext(cmd)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer ctx.DB.Close()

				removed, err := db.RemoveBlocklistEntry(ctx.DB, args[0])
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if !removed {
					return writeCommandError(cmd, fmt.Errorf("%q is not in the blocklist", args[0]))
				}
				if ctx.JSONMode {
					return writeJSON(cmd, map[string]string{"removed": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unblocked %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func listBlocklist(cmd *cobra.Command) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer ctx.DB.Close()

	entries, err := db.GetBlocklist(ctx.DB)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if ctx.JSONMode {
		return writeJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Blocklist is empty")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(out, "  %s\n", entry)
	}
	return nil
}
