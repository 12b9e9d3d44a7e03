package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/queue"
)

type fakeTransport struct {
	mu       sync.Mutex
	handlers map[string]domain.MessageHandler
	direct   map[string][][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		handlers: make(map[string]domain.MessageHandler),
		direct:   make(map[string][][]byte),
	}
}

func (f *fakeTransport) Connected() bool { return true }

func (f *fakeTransport) Subscribe(topic string, h domain.MessageHandler) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[topic] = h

	return fakeSubscription{}, nil
}

func (f *fakeTransport) SubscribeReply(h domain.MessageHandler) (string, domain.Subscription, error) {
	return "reply.test", fakeSubscription{}, nil
}

func (f *fakeTransport) Publish(topic string, message any) error { return nil }

func (f *fakeTransport) PublishTo(queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.direct[queueName] = append(f.direct[queueName], body)

	return nil
}

func (f *fakeTransport) Close() {}

func (f *fakeTransport) deliver(t *testing.T, topic string, message any) {
	t.Helper()

	body, err := json.Marshal(message)
	require.NoError(t, err)

	f.mu.Lock()
	h, ok := f.handlers[topic]
	f.mu.Unlock()

	require.True(t, ok, "no handler for topic %s", topic)

	h(body)
}

func (f *fakeTransport) sentTo(queueName string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([][]byte(nil), f.direct[queueName]...)
}

type fakeSubscription struct{}

func (fakeSubscription) Unsubscribe() error { return nil }

type fakePresenceStore struct {
	mu        sync.Mutex
	online    []string
	refreshed []string
}

func (f *fakePresenceStore) SetOnline(ctx context.Context, userID string) error { return nil }

func (f *fakePresenceStore) Refresh(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshed = append(f.refreshed, userID)

	return nil
}

func (f *fakePresenceStore) SetOffline(ctx context.Context, userID string) error { return nil }

func (f *fakePresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

func (f *fakePresenceStore) OnlineUserIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.online...), nil
}

func (f *fakePresenceStore) refreshedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.refreshed...)
}

func startResponder(t *testing.T, store domain.PresenceStore, transport *fakeTransport) *presenceResponder {
	t.Helper()

	w := NewPresenceResponder(store, transport)
	go w.Run()

	require.Eventually(t, func() bool {
		transport.mu.Lock()
		defer transport.mu.Unlock()

		return len(transport.handlers) == 2
	}, time.Second, time.Millisecond)

	t.Cleanup(func() {
		w.Stop()
		<-w.Done()
	})

	return w
}

func TestSnapshotRequestAnsweredOnReplyQueue(t *testing.T) {
	transport := newFakeTransport()
	store := &fakePresenceStore{online: []string{"1", "2", "3"}}

	startResponder(t, store, transport)

	transport.deliver(t, queue.RequestTopic, queue.SnapshotRequest{ReplyTo: "reply.caller"})

	sent := transport.sentTo("reply.caller")
	require.Len(t, sent, 1)

	snap, err := queue.DecodeSnapshot(sent[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, snap.UserIDs)
	assert.False(t, snap.SentAt.IsZero())
}

func TestHeartbeatRefreshesStoreEntry(t *testing.T) {
	transport := newFakeTransport()
	store := &fakePresenceStore{}

	startResponder(t, store, transport)

	transport.deliver(t, queue.HeartbeatTopic, domain.Heartbeat{UserID: "7", SentAt: time.Now()})
	transport.deliver(t, queue.HeartbeatTopic, domain.Heartbeat{UserID: "9", SentAt: time.Now()})

	assert.Equal(t, []string{"7", "9"}, store.refreshedIDs())
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	transport := newFakeTransport()
	store := &fakePresenceStore{online: []string{"1"}}

	startResponder(t, store, transport)

	transport.deliver(t, queue.RequestTopic, map[string]string{"replyTo": ""})
	transport.deliver(t, queue.HeartbeatTopic, map[string]string{"userId": ""})

	assert.Empty(t, transport.sentTo(""))
	assert.Empty(t, store.refreshedIDs())
}

func TestStopClosesDone(t *testing.T) {
	transport := newFakeTransport()
	w := NewPresenceResponder(&fakePresenceStore{}, transport)

	go w.Run()

	require.Eventually(t, func() bool {
		transport.mu.Lock()
		defer transport.mu.Unlock()

		return len(transport.handlers) == 2
	}, time.Second, time.Millisecond)

	w.Stop()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("responder did not shut down")
	}
}
