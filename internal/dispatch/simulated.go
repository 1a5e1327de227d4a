// internal/dispatch/simulated.go
package dispatch

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rateworks/refi-outreach/internal/model"
)

// SimulatedDispatcher is the demo-mode / test double implementation.
// Voice calls draw a weighted-random outcome the way the reference
// dialer simulation does; email and SMS always report sent. Never part
// of the production path: inject a real Dispatcher there.
type SimulatedDispatcher struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// voice outcomes weighted 40/30/20/10
var simulatedOutcomes = []struct {
	status string
	weight int
}{
	{"voicemail", 40},
	{"connected_not_interested", 30},
	{"connected_callback", 20},
	{"appointment_booked", 10},
}

func NewSimulatedDispatcher(seed int64) *SimulatedDispatcher {
	return &SimulatedDispatcher{rng: rand.New(rand.NewSource(seed))}
}

func (d *SimulatedDispatcher) Dispatch(ctx context.Context, channel model.Channel, to Recipient, msg Message) Result {
	if err := ctx.Err(); err != nil {
		return Result{Status: "error: " + err.Error()}
	}

	if channel != model.ChannelVoiceCall {
		return Result{Status: "sent"}
	}

	d.mu.Lock()
	roll := d.rng.Intn(100)
	d.mu.Unlock()

	for _, outcome := range simulatedOutcomes {
		if roll < outcome.weight {
			return Result{Status: outcome.status}
		}
		roll -= outcome.weight
	}
	return Result{Status: simulatedOutcomes[len(simulatedOutcomes)-1].status}
}

var _ Dispatcher = (*SimulatedDispatcher)(nil)
