// internal/model/campaign.go
package model

import "time"

const (
	CampaignActive  = "active"
	CampaignStopped = "stopped"
)

// StepResult is the outcome of processing one lead in an advance round.
// Error is set when the lead could not be processed (for example a
// template render failure); such leads are left untouched for retry.
type StepResult struct {
	LeadID  string  `json:"lead_id"`
	Lead    string  `json:"lead"`
	Channel Channel `json:"channel,omitempty"`
	Day     int     `json:"day"`
	Action  string  `json:"action,omitempty"`
	Status  string  `json:"status,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ExecutionRecord is the aggregate log entry of one advance-all
// invocation over a campaign.
type ExecutionRecord struct {
	Timestamp     time.Time    `json:"timestamp"`
	StepsExecuted int          `json:"steps_executed"`
	Results       []StepResult `json:"results"`
}

// Campaign is the aggregate root. The cadence step list is fixed at
// creation and never mutated after leads are enrolled. Leads keep their
// enrollment order.
type Campaign struct {
	ID           string            `db:"id" json:"id"`
	Name         string            `db:"name" json:"name"`
	Status       string            `db:"status" json:"status"`
	Originator   string            `db:"originator" json:"originator"`
	Cadence      []Step            `json:"cadence"`
	Leads        []*Lead           `json:"leads"`
	ExecutionLog []ExecutionRecord `json:"execution_log"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// LeadByID returns the enrolled lead with the given id, or nil.
func (c *Campaign) LeadByID(id string) *Lead {
	for _, l := range c.Leads {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Channels returns the distinct channels used by the cadence, in step order.
func (c *Campaign) Channels() []Channel {
	seen := map[Channel]bool{}
	channels := []Channel{}
	for _, s := range c.Cadence {
		if !seen[s.Channel] {
			seen[s.Channel] = true
			channels = append(channels, s.Channel)
		}
	}
	return channels
}
