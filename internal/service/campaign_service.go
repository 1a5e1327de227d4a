// internal/service/campaign_service.go
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/dispatch"
	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/repository"
)

type CampaignService struct {
	Repo       repository.CampaignRepositoryInterface
	Dispatcher dispatch.Dispatcher
	Log        *logrus.Logger
	NMLS       string

	// Advance calls on the same campaign are serialized to prevent
	// double-dispatch of the same due step. Different campaigns run
	// independently.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCampaignService(repo repository.CampaignRepositoryInterface, d dispatch.Dispatcher, log *logrus.Logger, nmls string) *CampaignService {
	return &CampaignService{
		Repo:       repo,
		Dispatcher: d,
		Log:        log,
		NMLS:       nmls,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *CampaignService) campaignLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// ====================== Campaign Builder ======================

// CreateCampaign enrolls every funded candidate whose refi score meets
// minScore, or the lower watch threshold when includeWatch is set, into
// a fresh campaign against the given cadence. Inclusion is a single
// merged list ordered by descending score. No dispatching happens here.
func (s *CampaignService) CreateCampaign(candidates []model.LoanAnalysis, minScore, watchScore int, includeWatch bool, originator string, cadence []model.Step) (*model.Campaign, error) {
	eligible := []model.LoanAnalysis{}
	for _, loan := range candidates {
		if loan.Stage != "Funded" {
			continue
		}
		if loan.RefiScore >= minScore || (includeWatch && loan.RefiScore >= watchScore) {
			eligible = append(eligible, loan)
		}
	}
	if len(eligible) == 0 {
		return nil, appErrors.NewEmptyEligibleSet(len(candidates))
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].RefiScore > eligible[j].RefiScore
	})

	now := time.Now().UTC()
	campaign := &model.Campaign{
		ID:         "refi-" + now.Format("20060102-150405"),
		Name:       "Refi Campaign — " + now.Format("Jan 02, 2006"),
		Status:     model.CampaignActive,
		Originator: originator,
		Cadence:    cadence,
		CreatedAt:  now,
	}

	firstDay := model.FirstStepDay(cadence)
	for _, loan := range eligible {
		lead := &model.Lead{
			ID:             uuid.NewString(),
			Name:           loan.Name,
			Email:          loan.Email,
			Phone:          loan.Phone,
			LoanNum:        loan.LoanNum,
			LoanAmount:     loan.LoanAmount,
			MarketRate:     loan.MarketRate,
			MonthlySavings: loan.MonthlySavings,
			RefiScore:      loan.RefiScore,
			CadenceDay:     firstDay,
			CadenceStatus:  model.StatusEnrolled,
			Touches:        []model.Touch{},
		}
		if loan.Rate != nil {
			lead.CurrentRate = *loan.Rate
		}
		if loan.RateDelta != nil {
			lead.RateDelta = *loan.RateDelta
		}
		campaign.Leads = append(campaign.Leads, lead)
	}

	if err := s.Repo.Create(campaign); err != nil {
		return nil, err
	}

	s.Log.Infof("🎯 Campaign created: %s with %d leads", campaign.ID, len(campaign.Leads))
	return campaign, nil
}

// ====================== Cadence Advancer ======================

// Advance executes one round of whatever is due now across every
// non-terminal lead, in enrollment order. Per-lead failures are
// isolated into the result; dispatch failure statuses are recorded but
// never block progression. The context is checked between leads so an
// operator stop takes effect promptly; each lead either fully completes
// its touch or is left exactly as before.
func (s *CampaignService) Advance(ctx context.Context, campaignID string) (*model.ExecutionRecord, error) {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	campaign, err := s.Repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignActive {
		return nil, appErrors.NewCampaignStopped(campaignID)
	}

	rec := &model.ExecutionRecord{
		Timestamp: time.Now().UTC(),
		Results:   []model.StepResult{},
	}

	var stopped error
	for _, lead := range campaign.Leads {
		if err := ctx.Err(); err != nil {
			stopped = err
			break
		}
		if lead.CadenceStatus.Terminal() {
			continue
		}

		step := model.StepForDay(campaign.Cadence, lead.CadenceDay)
		if step == nil {
			// Lead's day matches no defined step: move it along
			// without dispatching.
			s.advanceLead(campaign, lead, lead.CadenceDay)
			if err := s.Repo.UpdateLead(campaign.ID, lead); err != nil {
				s.Log.Errorf("⚠️ Failed to persist lead %s: %v", lead.ID, err)
			}
			continue
		}

		result := s.executeStep(ctx, campaign, lead, step)
		rec.Results = append(rec.Results, result)
		if result.Error == "" {
			rec.StepsExecuted++
		}
	}

	if len(rec.Results) > 0 {
		if err := s.Repo.AppendExecution(campaign.ID, *rec); err != nil {
			s.Log.Errorf("⚠️ Failed to append execution record for %s: %v", campaign.ID, err)
		}
	}
	return rec, stopped
}

// executeStep renders, dispatches and records one touch for one lead.
// A render failure leaves the lead untouched so the step can be retried
// once the missing field is backfilled.
func (s *CampaignService) executeStep(ctx context.Context, campaign *model.Campaign, lead *model.Lead, step *model.Step) model.StepResult {
	result := model.StepResult{
		LeadID:  lead.ID,
		Lead:    lead.Name,
		Channel: step.Channel,
		Day:     step.Day,
		Action:  actionFor(step.Channel),
	}

	vars := LeadVars(lead, campaign.Originator, s.NMLS)

	body, err := RenderTemplate(step.Body, vars)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	var subject string
	if step.Channel == model.ChannelEmail {
		if subject, err = RenderTemplate(step.Subject, vars); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	res := s.Dispatcher.Dispatch(ctx, step.Channel,
		dispatch.Recipient{Name: lead.Name, Email: lead.Email, Phone: lead.Phone},
		dispatch.Message{Subject: subject, Body: body},
	)
	result.Status = res.Status

	now := time.Now().UTC()
	touch := model.Touch{Timestamp: now, Channel: step.Channel, Day: step.Day, Status: res.Status}
	lead.LastTouch = &now
	s.advanceLead(campaign, lead, step.Day)

	if err := s.Repo.AppendTouch(campaign.ID, lead.ID, touch); err != nil {
		s.Log.Errorf("⚠️ Failed to record touch for lead %s: %v", lead.ID, err)
	}
	if err := s.Repo.UpdateLead(campaign.ID, lead); err != nil {
		s.Log.Errorf("⚠️ Failed to persist lead %s: %v", lead.ID, err)
	}
	return result
}

// advanceLead points the lead at the next larger cadence day, or marks
// it completed when none remains.
func (s *CampaignService) advanceLead(campaign *model.Campaign, lead *model.Lead, fromDay int) {
	if next, ok := model.NextStepDay(campaign.Cadence, fromDay); ok {
		lead.CadenceDay = next
		if lead.LastTouch != nil {
			lead.CadenceStatus = model.StatusInProgress
		}
	} else {
		lead.CadenceStatus = model.StatusCompleted
	}
}

func actionFor(channel model.Channel) string {
	switch channel {
	case model.ChannelEmail:
		return "send_email"
	case model.ChannelSMS:
		return "send_sms"
	case model.ChannelVoiceCall:
		return "place_call"
	}
	return string(channel)
}

// ====================== Status Reporter ======================

type LeadSnapshot struct {
	Name          string              `json:"name"`
	Score         int                 `json:"score"`
	CadenceDay    int                 `json:"cadence_day"`
	CadenceStatus model.CadenceStatus `json:"cadence_status"`
	LastTouch     *time.Time          `json:"last_touch"`
	Touches       int                 `json:"touches"`
}

type CampaignStatus struct {
	CampaignID string         `json:"campaign_id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Summary    map[string]int `json:"summary"`
	Leads      []LeadSnapshot `json:"leads"`
}

// Status is a read-only aggregation over a campaign's leads. A campaign
// with zero leads yields zero counts.
func (s *CampaignService) Status(campaignID string) (*CampaignStatus, error) {
	campaign, err := s.Repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	status := &CampaignStatus{
		CampaignID: campaign.ID,
		Name:       campaign.Name,
		Status:     campaign.Status,
		Summary: map[string]int{
			string(model.StatusEnrolled):   0,
			string(model.StatusInProgress): 0,
			string(model.StatusCompleted):  0,
			string(model.StatusConverted):  0,
			string(model.StatusOptedOut):   0,
		},
		Leads: []LeadSnapshot{},
	}

	for _, lead := range campaign.Leads {
		status.Summary[string(lead.CadenceStatus)]++
		status.Leads = append(status.Leads, LeadSnapshot{
			Name:          lead.Name,
			Score:         lead.RefiScore,
			CadenceDay:    lead.CadenceDay,
			CadenceStatus: lead.CadenceStatus,
			LastTouch:     lead.LastTouch,
			Touches:       len(lead.Touches),
		})
	}
	return status, nil
}

// ====================== Control surface ======================

type CampaignBrief struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Created      time.Time       `json:"created"`
	Status       string          `json:"status"`
	TotalLeads   int             `json:"total_leads"`
	Channels     []model.Channel `json:"channels"`
	CadenceSteps int             `json:"cadence_steps"`
}

func (s *CampaignService) Get(campaignID string) (*model.Campaign, error) {
	return s.Repo.GetByID(campaignID)
}

func (s *CampaignService) List() ([]CampaignBrief, error) {
	campaigns, err := s.Repo.List()
	if err != nil {
		return nil, err
	}
	briefs := make([]CampaignBrief, 0, len(campaigns))
	for _, c := range campaigns {
		briefs = append(briefs, CampaignBrief{
			ID:           c.ID,
			Name:         c.Name,
			Created:      c.CreatedAt,
			Status:       c.Status,
			TotalLeads:   len(c.Leads),
			Channels:     c.Channels(),
			CadenceSteps: len(c.Cadence),
		})
	}
	return briefs, nil
}

func (s *CampaignService) Stop(campaignID string) error {
	return s.Repo.UpdateStatus(campaignID, model.CampaignStopped)
}

// MarkConverted records an external conversion signal for a lead.
// Terminal and final: a lead already in a terminal status is left as is.
func (s *CampaignService) MarkConverted(campaignID, leadID string) error {
	return s.markTerminal(campaignID, leadID, model.StatusConverted)
}

// MarkOptedOut records an opt-out. Terminal and final.
func (s *CampaignService) MarkOptedOut(campaignID, leadID string) error {
	return s.markTerminal(campaignID, leadID, model.StatusOptedOut)
}

func (s *CampaignService) markTerminal(campaignID, leadID string, status model.CadenceStatus) error {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	campaign, err := s.Repo.GetByID(campaignID)
	if err != nil {
		return err
	}
	lead := campaign.LeadByID(leadID)
	if lead == nil {
		return appErrors.NewLeadNotFound(campaignID, leadID)
	}
	if lead.CadenceStatus.Terminal() {
		return nil
	}
	lead.CadenceStatus = status
	return s.Repo.UpdateLead(campaignID, lead)
}
