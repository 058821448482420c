package theme

import "sync"

// SystemPreference reports the operating system colour scheme and its
// changes.
type SystemPreference interface {
	Dark() bool
	Watch(fn func(dark bool)) (stop func())
}

// StaticPreference is a SystemPreference whose value is set explicitly, by
// configuration or by a test.
type StaticPreference struct {
	mu       sync.Mutex
	dark     bool
	watchers map[int]func(bool)
	next     int
}

// NewStaticPreference returns a preference starting at dark.
func NewStaticPreference(dark bool) *StaticPreference {
	return &StaticPreference{dark: dark, watchers: map[int]func(bool){}}
}

func (p *StaticPreference) Dark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

// SetDark changes the preference and notifies watchers when it differs.
func (p *StaticPreference) SetDark(dark bool) {
	p.mu.Lock()
	if p.dark == dark {
		p.mu.Unlock()
		return
	}
	p.dark = dark
	watchers := make([]func(bool), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()
	for _, fn := range watchers {
		fn(dark)
	}
}

func (p *StaticPreference) Watch(fn func(bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.watchers[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

func systemTheme(p SystemPreference) Theme {
	if p != nil && p.Dark() {
		return Dark
	}
	return Light
}
