package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "whorl"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Whorl - @mention contacts while composing mail",
		Long:          "Whorl composes drafts with @mention autocomplete over recipients, an address book and custom contacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("profile", "", "profile directory (default $WHORL_HOME or ~/.config/whorl)")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewComposeCmd(),
		NewQueryCmd(),
		NewDraftsCmd(),
		NewContactsCmd(),
		NewBlocklistCmd(),
		NewAddressBookCmd(),
		NewConfigCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
