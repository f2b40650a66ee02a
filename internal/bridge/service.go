// Package bridge carries requests from editing surfaces to the component
// that owns contacts, recipients and settings. Every call is a message; the
// surface never touches the stores directly.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/adamavenir/whorl/internal/contacts"
	"github.com/adamavenir/whorl/internal/types"
)

// Kind names a message type.
type Kind string

const (
	KindGetContacts     Kind = "getContacts"
	KindEnsureRecipient Kind = "ensureRecipientInTo"
	KindGetSettings     Kind = "getSettings"
)

var (
	ErrStopped     = errors.New("bridge service stopped")
	ErrUnknownKind = errors.New("unknown message type")
)

// Envelope is one message from a surface.
type Envelope struct {
	Kind      Kind
	SurfaceID string
	Query     string
	Email     string
	Name      string

	reply chan Response
}

// Response answers an envelope.
type Response struct {
	Candidates []types.Candidate
	Settings   types.Settings
	Err        error
}

// SettingsSource hands out settings snapshots.
type SettingsSource interface {
	Settings() types.Settings
}

// Service answers envelopes on its own goroutine. Each request is served on
// a goroutine of its own so a slow address book never holds up another
// surface; writes to recipient fields are serialised.
type Service struct {
	aggregator *contacts.Aggregator
	host       contacts.ComposeHost
	settings   SettingsSource

	requests chan Envelope
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	writeMu  sync.Mutex
}

// NewService wires a service. It does nothing until Run is called.
func NewService(aggregator *contacts.Aggregator, host contacts.ComposeHost, settings SettingsSource) *Service {
	return &Service{
		aggregator: aggregator,
		host:       host,
		settings:   settings,
		requests:   make(chan Envelope),
		done:       make(chan struct{}),
	}
}

// Run serves envelopes until ctx ends. In-flight requests finish before
// Run returns.
func (s *Service) Run(ctx context.Context) {
	defer s.wg.Wait()
	defer s.once.Do(func() { close(s.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-s.requests:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				env.reply <- s.serve(ctx, env)
			}()
		}
	}
}

// Send delivers an envelope and waits for its response.
func (s *Service) Send(ctx context.Context, env Envelope) (Response, error) {
	env.reply = make(chan Response, 1)
	select {
	case s.requests <- env:
	case <-s.done:
		return Response{}, ErrStopped
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case resp := <-env.reply:
		return resp, resp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Client returns a surface-bound client.
func (s *Service) Client(surfaceID string) *Client {
	return &Client{service: s, surfaceID: surfaceID}
}

func (s *Service) serve(ctx context.Context, env Envelope) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("warning: %s for %s panicked: %v", env.Kind, env.SurfaceID, r)
			resp = Response{Err: fmt.Errorf("%s: %v", env.Kind, r)}
		}
	}()

	switch env.Kind {
	case KindGetSettings:
		return Response{Settings: s.currentSettings()}
	case KindGetContacts:
		if env.SurfaceID == "" {
			log.Printf("warning: %s without a surface", env.Kind)
			return Response{Candidates: []types.Candidate{}}
		}
		if s.aggregator == nil {
			return Response{Candidates: []types.Candidate{}}
		}
		candidates := s.aggregator.Query(ctx, env.SurfaceID, env.Query, s.currentSettings())
		if candidates == nil {
			candidates = []types.Candidate{}
		}
		return Response{Candidates: candidates}
	case KindEnsureRecipient:
		if env.SurfaceID == "" {
			log.Printf("warning: %s without a surface", env.Kind)
			return Response{}
		}
		if !s.currentSettings().AutoAddRecipient {
			return Response{}
		}
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if err := contacts.EnsureRecipientInTo(ctx, s.host, env.SurfaceID, env.Email, env.Name); err != nil {
			log.Printf("warning: ensure %s in To of %s: %v", env.Email, env.SurfaceID, err)
			return Response{Err: err}
		}
		return Response{}
	default:
		return Response{Err: fmt.Errorf("%w: %s", ErrUnknownKind, env.Kind)}
	}
}

func (s *Service) currentSettings() types.Settings {
	if s.settings == nil {
		return types.DefaultSettings()
	}
	return s.settings.Settings()
}
