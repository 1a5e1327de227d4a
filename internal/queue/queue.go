package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DispatchTopic carries rendered touch messages to the channel senders.
const DispatchTopic = "touch_dispatches"

// Queue interface
type Queue interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler func(payload []byte) error) error
}

// InMemoryQueue is an in-process queue with retry, used when no AMQP
// broker is configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	log      *logrus.Logger
	handlers map[string][]func(payload []byte) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *logrus.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		log:      log,
		handlers: make(map[string][]func(payload []byte) error),
	}
}

// job wraps a message payload with retry info
type job struct {
	payload    []byte
	retryCount int
	maxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	j := job{
		payload:    payload,
		maxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, j)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload []byte) error, j job) {
	for j.retryCount <= j.maxRetries {
		err := handler(j.payload)
		if err == nil {
			return // ACK
		}

		j.retryCount++
		q.log.Warnf("Job failed (attempt %d/%d): %v", j.retryCount, j.maxRetries, err)

		if j.retryCount > j.maxRetries {
			q.log.Errorf("Job permanently failed after %d attempts", j.maxRetries)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(j.retryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
