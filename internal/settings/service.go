package settings

import (
	"sync"
)

// Service owns the live settings and notifies subscribers when they
// change. The resolution coordinator subscribes its invalidation hook here
// so a provider switch or manual-time edit never serves stale state.
type Service struct {
	path string

	mu   sync.RWMutex
	cur  Settings
	subs []func()
}

// NewService loads settings from path (defaults if the file is missing).
func NewService(path string) (*Service, error) {
	cur, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	return &Service{path: path, cur: cur}, nil
}

// Snapshot returns a read-only copy of the current settings.
func (s *Service) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Subscribe registers a callback invoked after every successful update.
// Callbacks run synchronously on the updating goroutine and must be cheap.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Update applies mutate to a copy of the settings, validates, persists,
// and swaps it in. Subscribers are notified only when everything succeeded.
func (s *Service) Update(mutate func(*Settings) error) error {
	s.mu.Lock()
	next := s.cur
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.SaveTo(s.path); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cur = next
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return nil
}

// Reset restores defaults, persists, and notifies subscribers.
func (s *Service) Reset() error {
	return s.Update(func(st *Settings) error {
		*st = Defaults()
		return nil
	})
}

// Path returns the settings file location.
func (s *Service) Path() string {
	return s.path
}
