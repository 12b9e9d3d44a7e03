package event

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/internal"
)

const writeQueueSize = 64

// wire ops for the websocket gateway protocol.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opPublish     = "publish"
	opSend        = "send"
	opMessage     = "message"
)

type frame struct {
	Op    string          `json:"op"`
	Topic string          `json:"topic,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// Websocket is a domain.Transport over a single gateway connection speaking
// JSON frames. Private reply queues are client-named topics; the gateway
// routes send frames to the one subscriber of that name. All writes go
// through one goroutine.
type Websocket struct {
	conn *websocket.Conn
	out  chan frame
	done chan struct{}

	mu       sync.Mutex
	handlers map[string]map[int]domain.MessageHandler
	nextID   int

	connected atomic.Bool
	closeOnce sync.Once
}

func NewWebsocket(url string) (*Websocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	w := &Websocket{
		conn:     conn,
		out:      make(chan frame, writeQueueSize),
		done:     make(chan struct{}),
		handlers: make(map[string]map[int]domain.MessageHandler),
	}

	w.connected.Store(true)

	go w.readLoop()
	go w.writeLoop()

	return w, nil
}

func (w *Websocket) Connected() bool {
	return w.connected.Load()
}

func (w *Websocket) Subscribe(topic string, h domain.MessageHandler) (domain.Subscription, error) {
	if !w.Connected() {
		return nil, fmt.Errorf("subscribe %s: transport closed", topic)
	}

	w.mu.Lock()

	id := w.nextID
	w.nextID++

	first := len(w.handlers[topic]) == 0
	if first {
		w.handlers[topic] = make(map[int]domain.MessageHandler)
	}
	w.handlers[topic][id] = h

	w.mu.Unlock()

	if first {
		if err := w.enqueue(frame{Op: opSubscribe, Topic: topic}); err != nil {
			w.removeHandler(topic, id)
			return nil, err
		}
	}

	return &wsSubscription{transport: w, topic: topic, id: id}, nil
}

func (w *Websocket) SubscribeReply(h domain.MessageHandler) (string, domain.Subscription, error) {
	queue := fmt.Sprintf("reply.%d.%d", time.Now().UnixNano(), rand.Int31())

	sub, err := w.Subscribe(queue, h)
	if err != nil {
		return "", nil, err
	}

	return queue, sub, nil
}

func (w *Websocket) Publish(topic string, body any) error {
	return w.write(opPublish, topic, body)
}

func (w *Websocket) PublishTo(queue string, body any) error {
	return w.write(opSend, queue, body)
}

func (w *Websocket) write(op, topic string, body any) error {
	if !w.Connected() {
		return fmt.Errorf("%s %s: transport closed", op, topic)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json encode body: %w", err)
	}

	return w.enqueue(frame{Op: op, Topic: topic, Body: encoded})
}

func (w *Websocket) enqueue(f frame) error {
	select {
	case w.out <- f:
		return nil
	case <-w.done:
		return fmt.Errorf("transport closed")
	}
}

func (w *Websocket) Close() {
	w.closeOnce.Do(func() {
		w.connected.Store(false)
		close(w.done)
		w.conn.Close()
	})
}

func (w *Websocket) readLoop() {
	defer internal.LogGoroutineClosed("Websocket.readLoop")
	defer w.Close()

	for {
		var f frame

		if err := w.conn.ReadJSON(&f); err != nil {
			if _, is := err.(*websocket.CloseError); !is {
				log.Printf("err: read frame: %s", err)
			}

			return
		}

		if f.Op != opMessage {
			continue
		}

		w.dispatch(f.Topic, f.Body)
	}
}

func (w *Websocket) dispatch(topic string, body []byte) {
	w.mu.Lock()

	handlers := make([]domain.MessageHandler, 0, len(w.handlers[topic]))
	for _, h := range w.handlers[topic] {
		handlers = append(handlers, h)
	}

	w.mu.Unlock()

	for _, h := range handlers {
		h(body)
	}
}

func (w *Websocket) writeLoop() {
	defer internal.LogGoroutineClosed("Websocket.writeLoop")

	for {
		select {
		case <-w.done:
			return
		case f := <-w.out:
			if err := w.conn.WriteJSON(f); err != nil {
				log.Printf("err: write frame: %s", err)
				w.Close()

				return
			}
		}
	}
}

func (w *Websocket) removeHandler(topic string, id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.handlers[topic], id)

	if len(w.handlers[topic]) == 0 {
		delete(w.handlers, topic)
	}
}

type wsSubscription struct {
	transport *Websocket
	topic     string
	id        int
}

func (s *wsSubscription) Unsubscribe() error {
	s.transport.mu.Lock()

	delete(s.transport.handlers[s.topic], s.id)
	last := len(s.transport.handlers[s.topic]) == 0
	if last {
		delete(s.transport.handlers, s.topic)
	}

	s.transport.mu.Unlock()

	if last && s.transport.Connected() {
		return s.transport.enqueue(frame{Op: opUnsubscribe, Topic: s.topic})
	}

	return nil
}
