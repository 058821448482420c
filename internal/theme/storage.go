package theme

import "sync"

// Event reports a value written to storage. Writer identifies who wrote it
// so a service can ignore its own writes.
type Event struct {
	Key    string
	Value  string
	Writer string
}

// Storage is a persisted key-value store shared by several services, the
// way browser tabs share local storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value, writer string) error
	Watch(fn func(Event)) (stop func(), err error)
}

// MemoryStorage is an in-process Storage. Watchers run synchronously on the
// writing goroutine.
type MemoryStorage struct {
	mu       sync.Mutex
	values   map[string]string
	watchers map[int]func(Event)
	next     int
}

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}, watchers: map[int]func(Event){}}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value, writer string) error {
	m.mu.Lock()
	m.values[key] = value
	watchers := make([]func(Event), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}
	m.mu.Unlock()

	ev := Event{Key: key, Value: value, Writer: writer}
	for _, fn := range watchers {
		fn(ev)
	}
	return nil
}

func (m *MemoryStorage) Watch(fn func(Event)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.watchers[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}, nil
}
