package command

import (
	"database/sql"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/spf13/cobra"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	DB       *sql.DB
	Profile  core.Profile
	JSONMode bool
}

// GetContext opens the profile database named by --profile.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	profileDir, _ := cmd.Flags().GetString("profile")
	jsonMode, _ := cmd.Flags().GetBool("json")

	profile, err := core.ResolveProfile(profileDir)
	if err != nil {
		return nil, err
	}
	conn, err := db.OpenDatabase(profile)
	if err != nil {
		return nil, err
	}
	return &CommandContext{DB: conn, Profile: profile, JSONMode: jsonMode}, nil
}
