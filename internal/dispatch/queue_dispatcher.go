// internal/dispatch/queue_dispatcher.go
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/queue"
)

// QueueDispatcher hands touches to the dispatch queue and reports
// "queued". Actual delivery happens in the subscriber or cmd/worker;
// the cadence accepts "we tried" as sufficient to advance.
type QueueDispatcher struct {
	Queue queue.Queue
	Topic string
}

func NewQueueDispatcher(q queue.Queue) *QueueDispatcher {
	return &QueueDispatcher{Queue: q, Topic: queue.DispatchTopic}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, channel model.Channel, to Recipient, msg Message) Result {
	if err := ctx.Err(); err != nil {
		return Result{Status: "error: " + err.Error()}
	}

	payload, err := json.Marshal(Job{Channel: channel, To: to, Message: msg})
	if err != nil {
		return Result{Status: "error: " + err.Error()}
	}
	if err := d.Queue.Publish(d.Topic, payload); err != nil {
		return Result{Status: "error: " + err.Error()}
	}
	return Result{Status: "queued"}
}

var _ Dispatcher = (*QueueDispatcher)(nil)
