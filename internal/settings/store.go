// Package settings hands out immutable settings snapshots and keeps them
// current while the profile database changes underneath.
package settings

import (
	"database/sql"
	"sync"
	"sync/atomic"

	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
)

// Loader reads the whole settings record.
type Loader func() (types.Settings, error)

// FromDB loads settings from the profile database.
func FromDB(conn *sql.DB) Loader {
	return func() (types.Settings, error) {
		return db.LoadSettings(conn)
	}
}

// Store holds the current snapshot. Readers always get a private copy, so a
// session that took one keeps it unchanged however often the store reloads.
type Store struct {
	current atomic.Pointer[types.Settings]
	load    Loader

	mu   sync.Mutex
	subs []func(types.Settings)
}

// NewStore starts from initial; load is used by Reload and may be nil.
func NewStore(initial types.Settings, load Loader) *Store {
	s := &Store{load: load}
	s.Replace(initial)
	return s
}

// Open loads the first snapshot through load.
func Open(load Loader) (*Store, error) {
	initial, err := load()
	if err != nil {
		return nil, err
	}
	return NewStore(initial, load), nil
}

// Settings returns a copy of the current snapshot.
func (s *Store) Settings() types.Settings {
	if cur := s.current.Load(); cur != nil {
		return cur.Clone()
	}
	return types.DefaultSettings()
}

// Replace installs a new snapshot and notifies subscribers.
func (s *Store) Replace(next types.Settings) {
	snapshot := next.Clone()
	s.current.Store(&snapshot)

	s.mu.Lock()
	subs := append([]func(types.Settings){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot.Clone())
	}
}

// Subscribe registers fn to receive every new snapshot.
func (s *Store) Subscribe(fn func(types.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Reload re-reads the record. On failure the previous snapshot stays.
func (s *Store) Reload() error {
	if s.load == nil {
		return nil
	}
	next, err := s.load()
	if err != nil {
		return err
	}
	s.Replace(next)
	return nil
}
