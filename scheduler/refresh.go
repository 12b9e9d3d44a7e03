package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/internal"
)

const DefaultInterval = 30 * time.Second

type Options struct {
	Enabled         bool
	Interval        time.Duration
	PauseWhenHidden bool

	// OnRefresh is the wrapped operation. It can be swapped at any time via
	// SetOnRefresh without restarting the session.
	OnRefresh func(ctx context.Context) error

	// OnError receives refresh failures. The session keeps running.
	OnError func(error)

	// Visibility is the host foreground/background signal. nil means always
	// visible.
	Visibility domain.VisibilityReporter
}

// Session is one periodic-refresh scheduler instance. At most one execution
// of the wrapped operation is in flight at any time; ticks and manual
// triggers arriving while one is outstanding are dropped, never queued.
type Session struct {
	mu              sync.Mutex
	enabled         bool
	interval        time.Duration
	pauseWhenHidden bool
	onRefresh       func(ctx context.Context) error
	onError         func(error)
	visibility      domain.VisibilityReporter

	active      bool
	closed      bool
	stop        chan struct{}
	lastRefresh time.Time

	unwatchVisibility func()

	refreshing atomic.Bool
	wg         sync.WaitGroup
}

// New creates a session. An enabled session starts immediately; Close must
// be called when the owner goes away or the timer leaks.
func New(opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	s := &Session{
		enabled:         opts.Enabled,
		interval:        opts.Interval,
		pauseWhenHidden: opts.PauseWhenHidden,
		onRefresh:       opts.OnRefresh,
		onError:         opts.OnError,
		visibility:      opts.Visibility,
	}

	if s.visibility != nil {
		s.unwatchVisibility = s.visibility.OnChange(s.onVisibilityChange)
	}

	if s.enabled {
		s.Start()
	}

	return s
}

// Start arms the timer, replacing any previous one, and fires an immediate
// refresh.
func (s *Session) Start() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.stopLocked()

	stop := make(chan struct{})
	s.stop = stop
	s.active = true
	interval := s.interval

	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(stop, interval)
}

// Stop disarms the timer. Idempotent; an in-flight refresh is allowed to
// complete, but no further ticks fire.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Session) stopLocked() {
	if !s.active {
		return
	}

	close(s.stop)
	s.stop = nil
	s.active = false
}

// Toggle stops an active session and starts an inactive one.
func (s *Session) Toggle() {
	if s.IsActive() {
		s.Stop()
	} else {
		s.Start()
	}
}

// Refresh invokes the wrapped operation once. A call arriving while a
// previous invocation is outstanding is a no-op. Errors go to OnError and
// are never returned to the trigger.
func (s *Session) Refresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer s.refreshing.Store(false)

	s.mu.Lock()
	op := s.onRefresh
	s.mu.Unlock()

	if op == nil {
		return
	}

	if err := op(ctx); err != nil {
		s.reportError(err)
		return
	}

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.mu.Unlock()
}

// SetOnRefresh swaps the wrapped operation. The timer dereferences the
// current value at call time, so no restart is needed.
func (s *Session) SetOnRefresh(op func(ctx context.Context) error) {
	s.mu.Lock()
	s.onRefresh = op
	s.mu.Unlock()
}

// SetEnabled flips the per-tick gate. Enabling an inactive session arms it;
// disabling keeps the timer but makes ticks no-ops.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	active := s.active
	closed := s.closed
	s.mu.Unlock()

	if enabled && !active && !closed {
		s.Start()
	}
}

func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

func (s *Session) IsRefreshing() bool {
	return s.refreshing.Load()
}

// LastRefreshTime is the completion time of the last successful refresh,
// zero when none has succeeded yet.
func (s *Session) LastRefreshTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastRefresh
}

// Close stops the session for good and releases the visibility watch.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopLocked()
	s.closed = true
	unwatch := s.unwatchVisibility
	s.unwatchVisibility = nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}

	s.wg.Wait()
}

func (s *Session) run(stop chan struct{}, interval time.Duration) {
	defer s.wg.Done()
	defer internal.LogGoroutineClosed("scheduler.Session.run")

	s.Refresh(context.Background())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.shouldTick() {
				s.Refresh(context.Background())
			}
		}
	}
}

func (s *Session) shouldTick() bool {
	s.mu.Lock()
	enabled := s.enabled
	paused := s.pauseWhenHidden
	visibility := s.visibility
	s.mu.Unlock()

	if !enabled {
		return false
	}

	if paused && visibility != nil && !visibility.Visible() {
		return false
	}

	return true
}

// onVisibilityChange recovers a session that was enabled but not ticking
// while the environment was hidden.
func (s *Session) onVisibilityChange(visible bool) {
	if !visible {
		return
	}

	s.mu.Lock()
	restart := s.enabled && !s.active && !s.closed
	s.mu.Unlock()

	if restart {
		s.Start()
	}
}

func (s *Session) reportError(err error) {
	s.mu.Lock()
	onError := s.onError
	s.mu.Unlock()

	if onError != nil {
		onError(err)
		return
	}

	log.Printf("err: refresh: %s", err)
}
