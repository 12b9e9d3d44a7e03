package worker

import (
	"context"
	"log"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/internal"
	"github.com/nguyengiapalth/flowx-sync/queue"
)

type Worker interface {
	Run()
	Done() <-chan struct{}
}

// presenceResponder is the server half of the snapshot protocol: it answers
// snapshot requests with the store's current online set and applies
// heartbeats as TTL refreshes. Per-message failures are logged and the
// subscriptions stay up.
type presenceResponder struct {
	store     domain.PresenceStore
	transport domain.Transport

	done chan struct{}
	stop chan struct{}
	subs []domain.Subscription
}

func (w *presenceResponder) Run() {
	defer internal.LogGoroutineClosed("presenceResponder.Run")

	requestSub, err := w.transport.Subscribe(queue.RequestTopic, w.handleRequest)
	if err != nil {
		log.Printf("err: subscribe snapshot requests: %s", err)
		close(w.done)

		return
	}

	heartbeatSub, err := w.transport.Subscribe(queue.HeartbeatTopic, w.handleHeartbeat)
	if err != nil {
		log.Printf("err: subscribe heartbeats: %s", err)

		if uerr := requestSub.Unsubscribe(); uerr != nil {
			log.Printf("err: unsubscribe: %s", uerr)
		}

		close(w.done)

		return
	}

	w.subs = []domain.Subscription{requestSub, heartbeatSub}

	<-w.stop

	for _, sub := range w.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("err: unsubscribe: %s", err)
		}
	}

	close(w.done)
}

func (w *presenceResponder) Stop() {
	close(w.stop)
}

func (w *presenceResponder) Done() <-chan struct{} {
	return w.done
}

func (w *presenceResponder) handleRequest(body []byte) {
	req, err := queue.DecodeSnapshotRequest(body)
	if err != nil {
		log.Printf("err: snapshot request: %s", err)
		return
	}

	ids, err := w.store.OnlineUserIDs(context.Background())
	if err != nil {
		log.Printf("err: list online users: %s", err)
		return
	}

	if err = queue.SendSnapshot(w.transport, req.ReplyTo, ids); err != nil {
		log.Printf("err: send snapshot: %s", err)
	}
}

func (w *presenceResponder) handleHeartbeat(body []byte) {
	beat, err := queue.DecodeHeartbeat(body)
	if err != nil {
		log.Printf("err: heartbeat: %s", err)
		return
	}

	if err = w.store.Refresh(context.Background(), beat.UserID); err != nil {
		log.Printf("err: refresh presence ttl: %s", err)
	}
}

func NewPresenceResponder(
	store domain.PresenceStore,
	transport domain.Transport,
) *presenceResponder {
	return &presenceResponder{
		store:     store,
		transport: transport,
		done:      make(chan struct{}),
		stop:      make(chan struct{}),
	}
}
