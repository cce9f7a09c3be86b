package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/outreachly/outreach-backend/internal/logger"
)

// AMQPQueue publishes to and consumes from durable RabbitMQ queues named
// after the topic. Subscribers receive the raw JSON body as []byte.
type AMQPQueue struct {
	conn *amqp.Connection
	log  *logger.Logger

	mu sync.Mutex // guards pub
	pub *amqp.Channel
}

// DialAMQP connects to the broker at url
func DialAMQP(url string, log *logger.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}
	return &AMQPQueue{conn: conn, pub: ch, log: log.WithComponent("amqp")}, nil
}

func declare(ch *amqp.Channel, topic string) error {
	_, err := ch.QueueDeclare(topic, true, false, false, false, nil)
	return err
}

// Publish JSON-encodes payload as a persistent message
func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("amqp: encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := declare(q.pub, topic); err != nil {
		return fmt.Errorf("amqp: declare %s: %w", topic, err)
	}
	return q.pub.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Subscribe consumes topic one message at a time on its own channel.
// A failed message is requeued once, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp: open channel: %w", err)
	}
	if err := declare(ch, topic); err != nil {
		ch.Close()
		return fmt.Errorf("amqp: declare %s: %w", topic, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("amqp: qos: %w", err)
	}
	deliveries, err := ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("amqp: consume %s: %w", topic, err)
	}

	go func() {
		for d := range deliveries {
			if err := handler(d.Body); err != nil {
				q.log.Warn().Err(err).Str("topic", topic).Bool("redelivered", d.Redelivered).Msg("message handling failed")
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
		q.log.Info().Str("topic", topic).Msg("delivery channel closed")
	}()
	return nil
}

// NotifyClose reports the connection closing, with a nil error on a
// clean shutdown
func (q *AMQPQueue) NotifyClose() <-chan *amqp.Error {
	return q.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	q.pub.Close()
	q.mu.Unlock()
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
