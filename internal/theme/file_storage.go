package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"contractguard-web/internal/shared/telemetry"
)

const externalWriter = "external"

// FileStorage persists values as a JSON object in one file. Writes made by
// other processes are picked up through fsnotify and reported with the
// writer "external".
type FileStorage struct {
	path string

	mu       sync.Mutex
	snapshot map[string]string
	watchers map[int]func(Event)
	next     int
	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewFileStorage opens the store at path. The file need not exist yet.
func NewFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{path: path, watchers: map[int]func(Event){}}
	values, err := fs.read()
	if err != nil {
		return nil, err
	}
	fs.snapshot = values
	return fs, nil
}

func (f *FileStorage) Get(key string) (string, bool, error) {
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStorage) Set(key, value, writer string) error {
	f.mu.Lock()
	values, err := f.read()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	values[key] = value
	if err := f.write(values); err != nil {
		f.mu.Unlock()
		return err
	}
	f.snapshot = values
	watchers := f.watchersLocked()
	f.mu.Unlock()

	ev := Event{Key: key, Value: value, Writer: writer}
	for _, fn := range watchers {
		fn(ev)
	}
	return nil
}

// Watch registers fn. The first call starts watching the file's directory.
func (f *FileStorage) Watch(fn func(Event)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher == nil {
		if err := f.startLocked(); err != nil {
			return nil, err
		}
	}
	id := f.next
	f.next++
	f.watchers[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.watchers, id)
		f.mu.Unlock()
	}, nil
}

// Close stops watching the file.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	w := f.watcher
	f.watcher = nil
	done := f.done
	f.mu.Unlock()
	if w == nil {
		return nil
	}
	close(done)
	err := w.Close()
	f.wg.Wait()
	return err
}

func (f *FileStorage) startLocked() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("theme storage dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("theme storage watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.watcher = w
	f.done = make(chan struct{})
	f.wg.Add(1)
	go f.loop(w, f.done)
	return nil
}

func (f *FileStorage) loop(w *fsnotify.Watcher, done chan struct{}) {
	defer f.wg.Done()
	target := filepath.Clean(f.path)
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				f.reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			telemetry.Warn("theme.watch_error", map[string]any{"path": f.path, "error": err.Error()})
		}
	}
}

// reload diffs the file against the last known values and reports changed
// keys. Removed keys are reported with an empty value.
func (f *FileStorage) reload() {
	f.mu.Lock()
	values, err := f.read()
	if err != nil {
		f.mu.Unlock()
		telemetry.Warn("theme.reload_failed", map[string]any{"path": f.path, "error": err.Error()})
		return
	}
	var events []Event
	for k, v := range values {
		if old, ok := f.snapshot[k]; !ok || old != v {
			events = append(events, Event{Key: k, Value: v, Writer: externalWriter})
		}
	}
	for k := range f.snapshot {
		if _, ok := values[k]; !ok {
			events = append(events, Event{Key: k, Writer: externalWriter})
		}
	}
	f.snapshot = values
	watchers := f.watchersLocked()
	f.mu.Unlock()

	for _, ev := range events {
		for _, fn := range watchers {
			fn(ev)
		}
	}
}

func (f *FileStorage) watchersLocked() []func(Event) {
	out := make([]func(Event), 0, len(f.watchers))
	for _, fn := range f.watchers {
		out = append(out, fn)
	}
	return out
}

func (f *FileStorage) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read theme storage: %w", err)
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse theme storage: %w", err)
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("theme storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".theme-*")
	if err != nil {
		return fmt.Errorf("theme storage temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write theme storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
