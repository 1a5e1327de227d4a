package queue

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestPublishWithoutSubscribersErrors(t *testing.T) {
	q := NewInMemoryQueue(quietLogger())

	if err := q.Publish(DispatchTopic, []byte("hello")); err == nil {
		t.Fatal("expected error publishing to topic with no subscribers")
	}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	q := NewInMemoryQueue(quietLogger())

	received := make(chan []byte, 1)
	q.Subscribe(DispatchTopic, func(payload []byte) error {
		received <- payload
		return nil
	})

	if err := q.Publish(DispatchTopic, []byte("touch")); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != "touch" {
			t.Errorf("expected payload touch, got %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the message")
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	q := NewInMemoryQueue(quietLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		q.Subscribe(DispatchTopic, func(payload []byte) error {
			wg.Done()
			return nil
		})
	}

	if err := q.Publish(DispatchTopic, []byte("fanout")); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all subscribers received the message")
	}
}

func TestFailedJobIsRetried(t *testing.T) {
	q := NewInMemoryQueue(quietLogger())

	var mu sync.Mutex
	attempts := 0
	succeeded := make(chan struct{})
	q.Subscribe(DispatchTopic, func(payload []byte) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			return errors.New("transient send failure")
		}
		close(succeeded)
		return nil
	})

	if err := q.Publish(DispatchTopic, []byte("retry-me")); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	select {
	case <-succeeded:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not retried to success")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
