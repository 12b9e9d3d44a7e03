package scheduler

import "sync"

// VisibilityFlag is a mutable domain.VisibilityReporter fed by whatever host
// signal is available (a desktop focus hook, a websocket-reported tab state,
// a test).
type VisibilityFlag struct {
	mu       sync.Mutex
	visible  bool
	nextID   int
	watchers map[int]func(bool)
}

func NewVisibilityFlag(visible bool) *VisibilityFlag {
	return &VisibilityFlag{
		visible:  visible,
		watchers: make(map[int]func(bool)),
	}
}

func (v *VisibilityFlag) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.visible
}

// Set updates the flag and fires watchers on transitions.
func (v *VisibilityFlag) Set(visible bool) {
	v.mu.Lock()

	if v.visible == visible {
		v.mu.Unlock()
		return
	}

	v.visible = visible

	watchers := make([]func(bool), 0, len(v.watchers))
	for _, w := range v.watchers {
		watchers = append(watchers, w)
	}

	v.mu.Unlock()

	for _, w := range watchers {
		w(visible)
	}
}

func (v *VisibilityFlag) OnChange(fn func(visible bool)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.watchers[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.watchers, id)
		v.mu.Unlock()
	}
}
