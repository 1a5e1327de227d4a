package dispatch

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/queue"
)

// flakySender fails its first delivery and succeeds afterwards.
type flakySender struct {
	mu       sync.Mutex
	attempts int
	done     chan struct{}
}

func (s *flakySender) Send(j Job) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts == 1 {
		return "error: provider unavailable"
	}
	close(s.done)
	return "sent"
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSubscriberRetriesFailedDelivery(t *testing.T) {
	log := quietLogger()
	q := queue.NewInMemoryQueue(log)
	s := &flakySender{done: make(chan struct{})}
	StartSubscriber(q, s, log)

	d := NewQueueDispatcher(q)
	res := d.Dispatch(context.Background(), model.ChannelSMS,
		Recipient{Name: "Maria", Phone: "206-555-0101"},
		Message{Body: "hi"},
	)
	if res.Status != "queued" {
		t.Fatalf("expected queued, got %q", res.Status)
	}

	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatal("failed delivery was never retried")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts != 2 {
		t.Errorf("expected 2 delivery attempts, got %d", s.attempts)
	}
}

func TestSubscriberDropsMalformedPayload(t *testing.T) {
	log := quietLogger()
	q := queue.NewInMemoryQueue(log)
	s := &flakySender{done: make(chan struct{})}
	StartSubscriber(q, s, log)

	if err := q.Publish(queue.DispatchTopic, []byte("not json")); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	// Malformed payloads are dropped without ever reaching the sender.
	time.Sleep(100 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts != 0 {
		t.Errorf("expected sender untouched, got %d attempts", s.attempts)
	}
}
