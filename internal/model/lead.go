// internal/model/lead.go
package model

import (
	"strings"
	"time"
)

// CadenceStatus tracks a lead's progression through the cadence.
type CadenceStatus string

const (
	StatusEnrolled   CadenceStatus = "enrolled"
	StatusInProgress CadenceStatus = "in_progress"
	StatusCompleted  CadenceStatus = "completed"
	StatusConverted  CadenceStatus = "converted"
	StatusOptedOut   CadenceStatus = "opted_out"
)

// Terminal reports whether no further cadence steps may execute for a
// lead in this status. Terminal statuses are sticky.
func (s CadenceStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusConverted, StatusOptedOut:
		return true
	}
	return false
}

// Touch is an immutable log entry of one executed cadence step for one lead.
type Touch struct {
	Timestamp time.Time `db:"ts" json:"timestamp"`
	Channel   Channel   `db:"channel" json:"channel"`
	Day       int       `db:"day" json:"day"`
	Status    string    `db:"status" json:"status"`
}

// Lead is a borrower enrolled in a campaign, carrying its own
// progression state through the cadence.
type Lead struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone"`
	LoanNum        string        `db:"loan_num" json:"loan_num"`
	LoanAmount     float64       `db:"loan_amount" json:"loan_amount"`
	CurrentRate    float64       `db:"current_rate" json:"current_rate"`
	MarketRate     float64       `db:"market_rate" json:"market_rate"`
	RateDelta      float64       `db:"rate_delta" json:"rate_delta"`
	MonthlySavings float64       `db:"monthly_savings" json:"monthly_savings"`
	RefiScore      int           `db:"refi_score" json:"refi_score"`
	CadenceDay     int           `db:"cadence_day" json:"cadence_day"`
	CadenceStatus  CadenceStatus `db:"cadence_status" json:"cadence_status"`
	LastTouch      *time.Time    `db:"last_touch" json:"last_touch,omitempty"`
	Touches        []Touch       `json:"touch_history"`
}

// FirstName returns the first word of the lead's full name.
func (l *Lead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return l.Name
	}
	return fields[0]
}
