// internal/repository/memory_repository.go
package repository

import (
	"sync"

	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/model"
)

// InMemoryCampaignRepository is the default store when no DATABASE_URL
// is configured. It holds the aggregates directly; callers get the
// stored pointer, so UpdateLead only has to validate the lead exists.
type InMemoryCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*model.Campaign
	order     []string
}

func NewInMemoryCampaignRepository() *InMemoryCampaignRepository {
	return &InMemoryCampaignRepository{
		campaigns: make(map[string]*model.Campaign),
	}
}

func (r *InMemoryCampaignRepository) Create(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Status == "" {
		c.Status = model.CampaignActive
	}
	r.campaigns[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *InMemoryCampaignRepository) GetByID(id string) (*model.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (r *InMemoryCampaignRepository) List() ([]*model.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	campaigns := make([]*model.Campaign, 0, len(r.order))
	// Newest first, matching the Postgres listing order.
	for i := len(r.order) - 1; i >= 0; i-- {
		campaigns = append(campaigns, r.campaigns[r.order[i]])
	}
	return campaigns, nil
}

func (r *InMemoryCampaignRepository) UpdateStatus(campaignID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	return nil
}

func (r *InMemoryCampaignRepository) UpdateLead(campaignID string, lead *model.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	for i, l := range c.Leads {
		if l.ID == lead.ID {
			if l != lead {
				c.Leads[i] = lead
			}
			return nil
		}
	}
	return appErrors.NewLeadNotFound(campaignID, lead.ID)
}

func (r *InMemoryCampaignRepository) AppendTouch(campaignID, leadID string, t model.Touch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	lead := c.LeadByID(leadID)
	if lead == nil {
		return appErrors.NewLeadNotFound(campaignID, leadID)
	}
	lead.Touches = append(lead.Touches, t)
	return nil
}

func (r *InMemoryCampaignRepository) AppendExecution(campaignID string, rec model.ExecutionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.ExecutionLog = append(c.ExecutionLog, rec)
	return nil
}

var _ CampaignRepositoryInterface = (*InMemoryCampaignRepository)(nil)
