package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adamavenir/whorl/internal/bridge"
	"github.com/adamavenir/whorl/internal/compose"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/settings"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// NewComposeCmd opens the compose UI.
func NewComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose [surface-id]",
		Short: "Compose a draft with @mention autocomplete",
		Long: `Compose a draft with @mention autocomplete.

Without a surface ID a new draft is created from the flags. Type the trigger
character (default @) followed by part of a name or address to pick a
contact; arrows move, Enter or Tab inserts, Esc closes the list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			surfaceID := compose.NewSurfaceID()
			if len(args) == 1 {
				surfaceID = args[0]
			} else if _, err := db.CreateDraft(ctx.DB, draftFromFlags(cmd, surfaceID)); err != nil {
				return writeCommandError(cmd, err)
			}
			draft, err := compose.OpenDraft(ctx.DB, surfaceID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			logFile, err := tea.LogToFile(filepath.Join(ctx.Profile.Root, "compose.log"), AppName)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer logFile.Close()

			store, err := settings.Open(settings.FromDB(ctx.DB))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			runCtx, cancel := context.WithCancel(context.Background())
			defer cancel()

			watcher := settings.NewWatcher(store, ctx.Profile.DBPath)
			if err := watcher.Start(runCtx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: settings will not reload: %v\n", err)
			}
			defer watcher.Close()

			service := bridge.ForProfile(ctx.DB, store)
			serviceDone := make(chan struct{})
			go func() {
				service.Run(runCtx)
				close(serviceDone)
			}()

			client := service.Client(surfaceID)
			err = compose.Run(compose.Options{
				DB:         ctx.DB,
				SurfaceID:  surfaceID,
				Draft:      draft,
				Contacts:   client,
				Recipients: client,
				Settings:   client,
				Host:       db.Drafts{DB: ctx.DB},
			})
			cancel()
			<-serviceDone
			if err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved draft %s\n", surfaceID)
			return nil
		},
	}
	addDraftFlags(cmd)
	return cmd
}
