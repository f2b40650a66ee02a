package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/adamavenir/whorl/internal/bridge"
	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/settings"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the contact and recipient surface over MCP stdio.
type Server struct {
	name    string
	version string
	profile core.Profile
	dbConn  *sql.DB
	store   *settings.Store
	watcher *settings.Watcher
	service *bridge.Service
	sdk     *mcp.Server
	once    sync.Once
}

// NewServer opens the profile and registers the tools.
func NewServer(profileDir, version string) (*Server, error) {
	profile, err := core.ResolveProfile(profileDir)
	if err != nil {
		return nil, err
	}
	logf("Profile: %s", profile.Root)

	dbConn, err := db.OpenDatabase(profile)
	if err != nil {
		return nil, err
	}
	logf("Database opened: %s", profile.DBPath)

	store, err := settings.Open(settings.FromDB(dbConn))
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	service := bridge.ForProfile(dbConn, store)
	sdk := mcp.NewServer(&mcp.Implementation{Name: "whorl", Version: version}, nil)
	RegisterTools(sdk, &ToolContext{DB: dbConn, Service: service})

	return &Server{
		name:    "whorl",
		version: version,
		profile: profile,
		dbConn:  dbConn,
		store:   store,
		watcher: settings.NewWatcher(store, profile.DBPath),
		service: service,
		sdk:     sdk,
	}, nil
}

// Run serves MCP over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.watcher.OnReload(func(err error) {
		if err != nil {
			logf("Settings reload failed: %v", err)
			return
		}
		logf("Settings reloaded")
	})
	if err := s.watcher.Start(ctx); err != nil {
		logf("Settings watcher disabled: %v", err)
	}

	serviceDone := make(chan struct{})
	go func() {
		s.service.Run(ctx)
		close(serviceDone)
	}()

	err := s.sdk.Run(ctx, &mcp.StdioTransport{})
	cancel()
	<-serviceDone
	return err
}

// Close releases the watcher and the database.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.watcher.Close()
		err = s.dbConn.Close()
		logf("Server closed")
	})
	return err
}

func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[whorl-mcp] %s\n", fmt.Sprintf(format, args...))
}
