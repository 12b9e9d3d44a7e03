// Package event provides the message transport implementations: RabbitMQ
// for broker deployments and a websocket bridge for edge clients. Both
// satisfy domain.Transport; reconnection and broker-level heartbeating
// belong to the underlying connection, not to this layer.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/internal"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	connection *amqp.Connection

	mu       sync.Mutex
	pub      *amqp.Channel
	declared map[string]struct{}
}

func NewRabbitMQ(conn *amqp.Connection) (*RabbitMQ, error) {
	pub, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}

	return &RabbitMQ{
		connection: conn,
		pub:        pub,
		declared:   make(map[string]struct{}),
	}, nil
}

func (r *RabbitMQ) Connected() bool {
	return r.connection != nil && !r.connection.IsClosed()
}

// Subscribe binds an anonymous exclusive queue to the topic's fanout
// exchange and dispatches every delivery to h.
func (r *RabbitMQ) Subscribe(topic string, h domain.MessageHandler) (domain.Subscription, error) {
	ch, err := r.connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err = declareTopic(ch, topic); err != nil {
		ch.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		"",    // empty name gives an exclusive random queue
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name, // queue name
		"",     // routing key (ignored by fanout)
		topic,  // exchange
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return r.consume(ch, q.Name, h)
}

// SubscribeReply declares a private exclusive queue fed through the default
// exchange and returns its broker-assigned name.
func (r *RabbitMQ) SubscribeReply(h domain.MessageHandler) (string, domain.Subscription, error) {
	ch, err := r.connection.Channel()
	if err != nil {
		return "", nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return "", nil, fmt.Errorf("declare reply queue: %w", err)
	}

	sub, err := r.consume(ch, q.Name, h)
	if err != nil {
		return "", nil, err
	}

	return q.Name, sub, nil
}

func (r *RabbitMQ) consume(ch *amqp.Channel, queueName string, h domain.MessageHandler) (domain.Subscription, error) {
	msgs, err := ch.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer internal.LogGoroutineClosed("RabbitMQ.consume")

		for d := range msgs {
			h(d.Body)

			if err := d.Ack(false); err != nil {
				log.Printf("err: ack: %s", err)
			}
		}
	}()

	return &amqpSubscription{ch: ch}, nil
}

func (r *RabbitMQ) Publish(topic string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json encode body: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.declared[topic]; !ok {
		if err = declareTopic(r.pub, topic); err != nil {
			return err
		}

		r.declared[topic] = struct{}{}
	}

	err = r.pub.PublishWithContext(context.Background(),
		topic, // exchange
		"",    // routing key (ignored by fanout)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        encoded,
		})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (r *RabbitMQ) PublishTo(queueName string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json encode body: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.pub.PublishWithContext(context.Background(),
		"",        // default exchange
		queueName, // routing key addresses the queue directly
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        encoded,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	return nil
}

func (r *RabbitMQ) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pub.Close()
}

func declareTopic(ch *amqp.Channel, topic string) error {
	err := ch.ExchangeDeclare(
		topic,    // name
		"fanout", // type
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", topic, err)
	}

	return nil
}

type amqpSubscription struct {
	ch *amqp.Channel
}

func (s *amqpSubscription) Unsubscribe() error {
	return s.ch.Close()
}
