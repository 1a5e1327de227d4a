// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"

	"github.com/rateworks/refi-outreach/internal/model"
)

// Recipient is the contact info for one touch.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Message is a fully rendered touch. Subject is only set for email.
type Message struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Result describes a dispatch outcome. Expected failure modes
// (unreachable recipient, provider error) come back as a status string,
// never as a panic or error, so the advancer's per-lead isolation works
// uniformly.
type Result struct {
	Status string `json:"status"`
}

// Dispatcher performs the side effect for one touch. Implementations
// enforce their own per-dispatch timeout.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel model.Channel, to Recipient, msg Message) Result
}

// Job is the wire form of a queued dispatch.
type Job struct {
	Channel model.Channel `json:"channel"`
	To      Recipient     `json:"to"`
	Message Message       `json:"message"`
}
