package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get or set mention settings",
		Long: `Get or set mention settings.

Keys: trigger_character, max_results, auto_add_recipient,
search_address_books, search_recipients, search_custom_contacts.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			if len(args) == 0 {
				settings, err := db.LoadSettings(ctx.DB)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				entries := db.SettingValues(settings)
				if ctx.JSONMode {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Settings:")
				for _, key := range db.SettingKeys {
					fmt.Fprintf(out, "  %s: %s\n", key, entries[key])
				}
				fmt.Fprintf(out, "  custom contacts: %d\n", len(settings.CustomContacts))
				fmt.Fprintf(out, "  blocklist entries: %d\n", len(settings.Blocklist))
				return nil
			}

			key := normalizeConfigKey(args[0])
			if len(args) == 1 {
				value, err := db.GetSetting(ctx.DB, key)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if ctx.JSONMode {
					return writeJSON(cmd, map[string]string{key: value})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, value)
				return nil
			}

			if err := db.SetSetting(ctx.DB, key, args[1]); err != nil {
				return writeCommandError(cmd, err)
			}
			value, err := db.GetSetting(ctx.DB, key)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, map[string]string{key: value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}

	cmd.AddCommand(newConfigExportCmd(), newConfigImportCmd())
	return cmd
}

func newConfigExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all settings as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			if len(args) == 0 {
				if err := db.ExportSettingsTOML(ctx.DB, cmd.OutOrStdout()); err != nil {
					return writeCommandError(cmd, err)
				}
				return nil
			}
			f, err := os.Create(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := db.ExportSettingsTOML(ctx.DB, f); err != nil {
				_ = f.Close()
				return writeCommandError(cmd, err)
			}
			if err := f.Close(); err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported settings to %s\n", args[0])
			return nil
		},
	}
}

func newConfigImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all settings from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer f.Close()

			settings, err := db.ImportSettingsTOML(ctx.DB, f)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, settings)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported settings (%d custom contacts, %d blocklist entries)\n",
				len(settings.CustomContacts), len(settings.Blocklist))
			return nil
		},
	}
}

func normalizeConfigKey(value string) string {
	return strings.ReplaceAll(value, "-", "_")
}
