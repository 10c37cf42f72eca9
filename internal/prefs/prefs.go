// Package prefs loads and saves the operator's notification-routing
// preferences. A failed load silently falls back to the default record; a
// failed save is surfaced, since it is an explicit operator action.
package prefs

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/backend"
)

// Backend is the slice of the API the store needs
type Backend interface {
	NotificationPrefs(ctx context.Context) (backend.Preferences, error)
	SaveNotificationPrefs(ctx context.Context, prefs backend.Preferences) (backend.Preferences, error)
}

// Store caches the singleton preferences record per operator
type Store struct {
	api Backend

	mu      sync.RWMutex
	current backend.Preferences
}

// New creates a store holding the default record until Load is called
func New(api Backend) *Store {
	return &Store{
		api:     api,
		current: backend.DefaultPreferences(),
	}
}

// Load fetches the preferences, falling back to the default record on
// failure without surfacing an error.
func (s *Store) Load(ctx context.Context) backend.Preferences {
	loaded, err := s.api.NotificationPrefs(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Preferences load failed, using defaults")
		loaded = backend.DefaultPreferences()
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

// Save overwrites the record wholesale and caches the backend-echoed,
// possibly normalized, result. On failure the previously loaded record stays
// in place and the error is returned to the caller.
func (s *Store) Save(ctx context.Context, p backend.Preferences) (backend.Preferences, error) {
	saved, err := s.api.SaveNotificationPrefs(ctx, p)
	if err != nil {
		return backend.Preferences{}, err
	}

	s.mu.Lock()
	s.current = saved
	s.mu.Unlock()
	return saved, nil
}

// Current returns the last loaded or saved record
func (s *Store) Current() backend.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
