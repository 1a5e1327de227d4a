// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error for control-surface lookups
// by unknown campaign id.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrEmptyEligibleSet means no candidate met the enrollment threshold.
// Distinct from an empty candidate input so callers can tell "nothing
// qualified" from "nothing to campaign at all".
type ErrEmptyEligibleSet struct {
	Candidates int
}

func (e *ErrEmptyEligibleSet) Error() string {
	return fmt.Sprintf("no eligible leads among %d candidates", e.Candidates)
}

func NewEmptyEligibleSet(candidates int) error {
	return &ErrEmptyEligibleSet{Candidates: candidates}
}

// ErrTemplateRender means a cadence template references a placeholder
// with no matching lead field. The lead is left untouched so the step
// can be retried once the field is backfilled.
type ErrTemplateRender struct {
	Key string
}

func (e *ErrTemplateRender) Error() string {
	return fmt.Sprintf("template references unknown field %q", e.Key)
}

func NewTemplateRender(key string) error {
	return &ErrTemplateRender{Key: key}
}

// ErrCampaignStopped means an advance was requested on a stopped campaign.
type ErrCampaignStopped struct {
	CampaignID string
}

func (e *ErrCampaignStopped) Error() string {
	return fmt.Sprintf("campaign %s is stopped", e.CampaignID)
}

func NewCampaignStopped(id string) error {
	return &ErrCampaignStopped{CampaignID: id}
}

// ErrLeadNotFound is returned by lead-level terminal transitions.
type ErrLeadNotFound struct {
	CampaignID string
	LeadID     string
}

func (e *ErrLeadNotFound) Error() string {
	return fmt.Sprintf("lead %s not found in campaign %s", e.LeadID, e.CampaignID)
}

func NewLeadNotFound(campaignID, leadID string) error {
	return &ErrLeadNotFound{CampaignID: campaignID, LeadID: leadID}
}
