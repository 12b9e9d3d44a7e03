package domain

// MessageHandler consumes one raw message body. Handlers must not panic the
// transport; decode failures are logged and the subscription continues.
type MessageHandler func(body []byte)

type Subscription interface {
	Unsubscribe() error
}

// Transport is a topic-based message channel with a private reply queue.
// Implementations reconnect and heartbeat on their own; a disconnected
// transport reports Connected() == false and rejects publishes.
type Transport interface {
	Connected() bool

	// Subscribe attaches h to a broadcast topic.
	Subscribe(topic string, h MessageHandler) (Subscription, error)

	// SubscribeReply creates an exclusive private queue and attaches h to
	// it. The returned name is what remote peers address replies to.
	SubscribeReply(h MessageHandler) (string, Subscription, error)

	// Publish broadcasts body to every subscriber of topic.
	Publish(topic string, body any) error

	// PublishTo sends body to one private queue by name.
	PublishTo(queue string, body any) error

	Close()
}
