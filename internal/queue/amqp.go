package queue

import (
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// maxDeliveryAttempts bounds how often a failing dispatch job is
// redelivered before it is dropped.
const maxDeliveryAttempts = 3

// AMQPQueue publishes dispatch jobs to a RabbitMQ queue consumed by
// cmd/worker. Topics map to durable queues.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *logrus.Logger
}

func NewAMQPQueue(url string, log *logrus.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{conn: conn, ch: ch, log: log}, nil
}

func (q *AMQPQueue) Publish(topic string, payload []byte) error {
	queue, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

// retryCountFrom reads the x-retry-count header. Brokers hand integer
// headers back in varying widths, and a first delivery carries none.
func retryCountFrom(headers amqp.Table) int32 {
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

// nextAttempt returns the headers for a republished copy of a failed
// delivery, or false once the attempt budget is spent.
func nextAttempt(headers amqp.Table) (amqp.Table, bool) {
	n := retryCountFrom(headers) + 1
	if n >= maxDeliveryAttempts {
		return nil, false
	}
	return amqp.Table{"x-retry-count": n}, true
}

// Subscribe consumes the queue and runs the handler per delivery. A
// failed delivery is republished with an incremented x-retry-count
// header and the original acked; a plain nack-requeue would redeliver
// the message with its original headers and never converge.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload []byte) error) error {
	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			err := handler(d.Body)
			if err == nil {
				d.Ack(false)
				continue
			}

			headers, retry := nextAttempt(d.Headers)
			if !retry {
				q.log.Errorf("Dropping delivery after %d attempts: %v", maxDeliveryAttempts, err)
				d.Ack(false)
				continue
			}
			q.log.Warnf("Failed to process delivery (attempt %d/%d): %v",
				retryCountFrom(headers), maxDeliveryAttempts, err)

			pubErr := q.ch.Publish("", topic, false, false, amqp.Publishing{
				ContentType: d.ContentType,
				Body:        d.Body,
				Headers:     headers,
			})
			if pubErr != nil {
				q.log.Errorf("Failed to republish delivery: %v", pubErr)
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
