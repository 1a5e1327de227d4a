// internal/dispatch/subscriber.go
package dispatch

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/queue"
)

// JobSender delivers one dispatch job and returns a status string.
// Satisfied by sender.Senders.
type JobSender interface {
	Send(j Job) string
}

// StartSubscriber wires the dispatch topic to a sender. In single
// process deployments this replaces cmd/worker: queued touches are
// delivered in-process. A provider failure comes back as an error so
// the queue's retry policy applies.
func StartSubscriber(q queue.Queue, s JobSender, log *logrus.Logger) {
	err := q.Subscribe(queue.DispatchTopic, func(payload []byte) error {
		var j Job
		if err := json.Unmarshal(payload, &j); err != nil {
			log.Warnf("⚠️ Invalid dispatch payload: %v", err)
			return nil // malformed payloads are not retryable
		}

		status := s.Send(j)
		if strings.HasPrefix(status, "error:") {
			log.Warnf("⚠️ Dispatch of %s touch to %s failed: %s", j.Channel, j.To.Name, status)
			return errors.New(status)
		}
		log.Infof("✅ Dispatched %s touch to %s: %s", j.Channel, j.To.Name, status)
		return nil
	})
	if err != nil {
		log.Errorf("⚠️ Failed to start dispatch subscriber: %v", err)
	}
}
