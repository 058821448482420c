package theme

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"contractguard-web/internal/shared/telemetry"
)

// Service holds the active theme for one consumer. Several services may share
// a Storage; a write by one is applied by the others without re-persisting.
type Service struct {
	storage Storage
	system  SystemPreference
	id      string

	mu      sync.Mutex
	current Theme
	subs    map[int]func(Theme)
	nextSub int
	stops   []func()
	started bool
}

func NewService(storage Storage, system SystemPreference) *Service {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Service{
		storage: storage,
		system:  system,
		id:      uuid.NewString(),
		current: systemTheme(system),
		subs:    map[int]func(Theme){},
	}
}

// Init resolves the initial theme (stored value, else system) and starts
// listening for storage and system changes. Calling it twice is a no-op.
func (s *Service) Init() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	initial := systemTheme(s.system)
	if stored, ok := s.stored(); ok {
		initial = stored
	}
	s.apply(initial, false)

	stopStorage, err := s.storage.Watch(s.onStorage)
	if err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return fmt.Errorf("watch theme storage: %w", err)
	}
	stops := []func(){stopStorage}
	if s.system != nil {
		stops = append(stops, s.system.Watch(s.onSystem))
	}

	s.mu.Lock()
	s.stops = stops
	s.mu.Unlock()
	return nil
}

// Teardown stops listening. Subscribers are kept.
func (s *Service) Teardown() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.started = false
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func (s *Service) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for theme changes and returns its unsubscribe.
func (s *Service) Subscribe(fn func(Theme)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Set applies and persists t.
func (s *Service) Set(t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return ErrInvalidTheme
	}
	return s.apply(t, true)
}

// Toggle switches between light and dark and persists the result.
func (s *Service) Toggle() (Theme, error) {
	next := s.Current().Opposite()
	if err := s.apply(next, true); err != nil {
		return s.Current(), err
	}
	return next, nil
}

func (s *Service) apply(t Theme, persist bool) error {
	if persist {
		if err := s.storage.Set(StorageKey, string(t), s.id); err != nil {
			return fmt.Errorf("persist theme: %w", err)
		}
	}
	s.mu.Lock()
	changed := s.current != t
	s.current = t
	subs := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(t)
		}
	}
	return nil
}

func (s *Service) stored() (Theme, bool) {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		telemetry.Warn("theme.storage_read_failed", map[string]any{"error": err.Error()})
		return "", false
	}
	if !ok {
		return "", false
	}
	return Parse(raw)
}

func (s *Service) onStorage(ev Event) {
	if ev.Key != StorageKey || ev.Writer == s.id {
		return
	}
	t, ok := Parse(ev.Value)
	if !ok {
		t = systemTheme(s.system)
	}
	_ = s.apply(t, false)
}

func (s *Service) onSystem(dark bool) {
	if _, ok := s.stored(); ok {
		return
	}
	t := Light
	if dark {
		t = Dark
	}
	_ = s.apply(t, false)
}
