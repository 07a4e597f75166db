// internal/queue/amqp.go
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// SendJob is the payload published for each queued outbound message.
type SendJob struct {
	MessageID string `json:"message_id"`
	TenantID  string `json:"tenant_id"`
}

// AMQPQueue publishes jobs to RabbitMQ. Consuming happens in cmd/worker,
// which needs ack/nack control the Queue interface does not expose, so
// Subscribe is unsupported here.
type AMQPQueue struct {
	channel *amqp.Channel
}

func NewAMQPQueue(conn *amqp.Connection) (*AMQPQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := DeclareSendQueue(ch); err != nil {
		ch.Close()
		return nil, err
	}
	return &AMQPQueue{channel: ch}, nil
}

// DeclareSendQueue declares the durable send queue on a channel. Both the
// publisher and the worker declare it, so either side can start first.
func DeclareSendQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		TopicConversationSends,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return q.channel.Publish(
		"",    // default exchange
		topic, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("amqp queue is publish-only; consume via cmd/worker")
}

func (q *AMQPQueue) Close() error {
	return q.channel.Close()
}

var _ Queue = (*AMQPQueue)(nil)
