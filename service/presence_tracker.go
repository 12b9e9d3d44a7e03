package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/internal"
	"github.com/nguyengiapalth/flowx-sync/queue"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultConnectPoll       = 200 * time.Millisecond
	defaultSnapshotDelay     = 300 * time.Millisecond
	defaultReconnectDelay    = time.Second
)

var errTransportDisconnected = errors.New("transport not connected")

type PresenceTrackerConfig struct {
	// HeartbeatInterval is the period between keep-alive beats.
	HeartbeatInterval time.Duration

	// ConnectPoll is the delay between transport-connected checks in Init.
	ConnectPoll time.Duration

	// SnapshotDelay separates the reply-queue subscription from the
	// snapshot request so the subscription is registered first.
	SnapshotDelay time.Duration

	// ReconnectDelay lets the transport tear down before re-init.
	ReconnectDelay time.Duration
}

func (c *PresenceTrackerConfig) applyDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.ConnectPoll <= 0 {
		c.ConnectPoll = defaultConnectPoll
	}
	if c.SnapshotDelay <= 0 {
		c.SnapshotDelay = defaultSnapshotDelay
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
}

type presenceObserver struct {
	id int
	fn domain.PresenceObserver
}

// PresenceTracker is the shared source of truth for who is online. It
// reconciles one snapshot request with incremental join/leave events from
// the broadcast topic: a snapshot replaces the set wholesale, a delta
// mutates it. One instance per process, owned by bootstrap.App; tests build
// their own.
type PresenceTracker struct {
	transport domain.Transport
	userID    string
	cfg       PresenceTrackerConfig

	mu          sync.RWMutex
	online      map[string]struct{}
	lastEvent   *domain.PresenceEvent
	observers   []presenceObserver
	nextID      int
	initialized bool
	replyQueue  string
	subs        []domain.Subscription
	stop        chan struct{}

	wg sync.WaitGroup
}

func NewPresenceTracker(transport domain.Transport, userID string, cfg PresenceTrackerConfig) *PresenceTracker {
	cfg.applyDefaults()

	return &PresenceTracker{
		transport: transport,
		userID:    userID,
		cfg:       cfg,
		online:    make(map[string]struct{}),
	}
}

// Init subscribes the broadcast topic and a private reply queue, then
// requests one snapshot. Idempotent; waits for the transport to connect
// first. Subscribe-before-request ordering is what keeps the reply from
// being missed.
func (t *PresenceTracker) Init(ctx context.Context) error {
	t.mu.Lock()
	if t.initialized {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.waitConnected(ctx); err != nil {
		return err
	}

	eventSub, err := t.transport.Subscribe(queue.PresenceTopic, t.handleEvent)
	if err != nil {
		return err
	}

	replyQueue, replySub, err := t.transport.SubscribeReply(t.handleSnapshot)
	if err != nil {
		if uerr := eventSub.Unsubscribe(); uerr != nil {
			log.Printf("err: unsubscribe presence topic: %s", uerr)
		}

		return err
	}

	stop := make(chan struct{})

	t.mu.Lock()
	t.initialized = true
	t.replyQueue = replyQueue
	t.subs = []domain.Subscription{eventSub, replySub}
	t.stop = stop
	t.mu.Unlock()

	t.wg.Add(2)
	go t.requestInitialSnapshot(stop)
	go t.heartbeatLoop(stop)

	return nil
}

func (t *PresenceTracker) waitConnected(ctx context.Context) error {
	check := func() error {
		if !t.transport.Connected() {
			return errTransportDisconnected
		}

		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(t.cfg.ConnectPoll), ctx)

	return backoff.Retry(check, policy)
}

func (t *PresenceTracker) requestInitialSnapshot(stop chan struct{}) {
	defer t.wg.Done()

	select {
	case <-stop:
		return
	case <-time.After(t.cfg.SnapshotDelay):
	}

	t.RequestOnlineUsers()
}

func (t *PresenceTracker) heartbeatLoop(stop chan struct{}) {
	defer t.wg.Done()
	defer internal.LogGoroutineClosed("PresenceTracker.heartbeatLoop")

	ticker := time.NewTicker(t.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.transport.Connected() {
				continue
			}

			if err := queue.PublishHeartbeat(t.transport, t.userID); err != nil {
				log.Printf("err: heartbeat: %s", err)
			}
		}
	}
}

// handleEvent applies one join/leave delta from the broadcast topic.
func (t *PresenceTracker) handleEvent(body []byte) {
	event, err := queue.DecodeEvent(body)
	if err != nil {
		log.Printf("err: presence event: %s", err)
		return
	}

	t.mu.Lock()

	if event.Online() {
		t.online[event.UserID] = struct{}{}
	} else {
		delete(t.online, event.UserID)
	}

	t.lastEvent = event
	online := t.onlineLocked()
	observers := t.observersLocked()

	t.mu.Unlock()

	notifyAll(observers, online, event)
}

// handleSnapshot replaces the online set wholesale.
func (t *PresenceTracker) handleSnapshot(body []byte) {
	snap, err := queue.DecodeSnapshot(body)
	if err != nil {
		log.Printf("err: presence snapshot: %s", err)
		return
	}

	t.mu.Lock()

	t.online = make(map[string]struct{}, len(snap.UserIDs))
	for _, id := range snap.UserIDs {
		t.online[id] = struct{}{}
	}

	online := t.onlineLocked()
	observers := t.observersLocked()

	t.mu.Unlock()

	notifyAll(observers, online, nil)
}

// OnPresenceChange registers an observer and replays the current set to it
// once, synchronously, before any future event. Returns the unsubscribe.
func (t *PresenceTracker) OnPresenceChange(fn domain.PresenceObserver) func() {
	t.mu.Lock()

	id := t.nextID
	t.nextID++
	t.observers = append(t.observers, presenceObserver{id: id, fn: fn})
	online := t.onlineLocked()

	t.mu.Unlock()

	notifyOne(fn, online, nil)

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		for i, obs := range t.observers {
			if obs.id == id {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				break
			}
		}
	}
}

func (t *PresenceTracker) IsUserOnline(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.online[userID]

	return ok
}

func (t *PresenceTracker) OnlineUsers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.onlineLocked()
}

func (t *PresenceTracker) OnlineCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.online)
}

func (t *PresenceTracker) LastEvent() *domain.PresenceEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lastEvent
}

func (t *PresenceTracker) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.initialized
}

// RequestOnlineUsers asks the responder for a fresh snapshot. Safe to call
// anytime; a disconnected transport makes it a silent no-op.
func (t *PresenceTracker) RequestOnlineUsers() {
	t.mu.RLock()
	replyQueue := t.replyQueue
	initialized := t.initialized
	t.mu.RUnlock()

	if !initialized || !t.transport.Connected() {
		return
	}

	if err := queue.RequestSnapshot(t.transport, replyQueue); err != nil {
		log.Printf("err: request snapshot: %s", err)
	}
}

// Cleanup unsubscribes both channels, stops the heartbeat, and clears all
// state. In-flight sends are not retracted. Required before Reconnect.
func (t *PresenceTracker) Cleanup() {
	t.mu.Lock()

	if !t.initialized {
		t.mu.Unlock()
		return
	}

	subs := t.subs
	t.subs = nil
	close(t.stop)
	t.stop = nil
	t.online = make(map[string]struct{})
	t.lastEvent = nil
	t.observers = nil
	t.replyQueue = ""
	t.initialized = false

	t.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("err: unsubscribe: %s", err)
		}
	}

	t.wg.Wait()
}

// Reconnect tears the tracker down and re-initializes after a short delay
// so the transport can finish closing first.
func (t *PresenceTracker) Reconnect(ctx context.Context) error {
	t.Cleanup()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.cfg.ReconnectDelay):
	}

	return t.Init(ctx)
}

func (t *PresenceTracker) onlineLocked() []string {
	ids := make([]string, 0, len(t.online))
	for id := range t.online {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (t *PresenceTracker) observersLocked() []presenceObserver {
	observers := make([]presenceObserver, len(t.observers))
	copy(observers, t.observers)

	return observers
}

// notifyAll runs observers in registration order; each call is isolated so
// a panicking observer cannot starve the rest.
func notifyAll(observers []presenceObserver, online []string, event *domain.PresenceEvent) {
	for _, obs := range observers {
		notifyOne(obs.fn, online, event)
	}
}

func notifyOne(fn domain.PresenceObserver, online []string, event *domain.PresenceEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("err: presence observer panicked: %v", r)
		}
	}()

	fn(online, event)
}
