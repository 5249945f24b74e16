// Package notify carries small pieces of UI-facing state. No globals; a
// notifier is constructed once and passed to whatever needs it.
package notify

import "sync"

// Title holds the current screen title and tells subscribers when it
// changes. Setting an unchanged value does not notify.
type Title struct {
	mu     sync.Mutex
	value  string
	nextID int
	subs   map[int]func(string)
}

func NewTitle() *Title {
	return &Title{subs: make(map[int]func(string))}
}

func (t *Title) Get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *Title) Set(value string) {
	t.mu.Lock()
	if t.value == value {
		t.mu.Unlock()
		return
	}
	t.value = value
	fns := make([]func(string), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read or
	// re-subscribe without deadlocking.
	for _, fn := range fns {
		fn(value)
	}
}

// Subscribe registers fn for future changes and returns its unsubscribe
// function.
func (t *Title) Subscribe(fn func(string)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}
