// internal/service/daily_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/leadsource"
	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/pipeline"
)

// DailyResult summarizes one morning trigger run.
type DailyResult struct {
	Timestamp           time.Time `json:"timestamp"`
	RefiReadyCount      int       `json:"refi_ready_count"`
	TotalMonthlySavings float64   `json:"total_monthly_savings"`
	CampaignCreated     string    `json:"campaign_created,omitempty"`
	CadencesAdvanced    int       `json:"cadences_advanced"`
}

// DailyService runs the morning routine: refresh the rates timestamp,
// analyze the pipeline, auto-create a campaign when refi-ready loans
// exist, then advance every active campaign.
type DailyService struct {
	Campaigns  *CampaignService
	Source     leadsource.Source
	Rates      *pipeline.RatesStore
	Log        *logrus.Logger
	MinScore   int
	WatchScore int
	Originator string
}

func (s *DailyService) Run(ctx context.Context) (*DailyResult, error) {
	s.Log.Infof("🔔 Daily trigger fired at %s", time.Now().UTC().Format(time.RFC3339))

	rates := s.Rates.Touch()

	loans, err := s.Source.Fetch()
	if err != nil {
		return nil, err
	}
	analysis := pipeline.Analyze(loans, rates)

	out := &DailyResult{
		Timestamp:           rates.LastUpdated,
		RefiReadyCount:      analysis.RefiReadyCount,
		TotalMonthlySavings: analysis.TotalMonthlySavings,
	}

	if analysis.RefiReadyCount > 0 {
		campaign, err := s.Campaigns.CreateCampaign(analysis.Loans, s.MinScore, s.WatchScore, true, s.Originator, model.RefiCadence())
		if err != nil {
			var empty *appErrors.ErrEmptyEligibleSet
			if !errors.As(err, &empty) {
				return nil, err
			}
			s.Log.Info("No loans meet the refi threshold at current rates")
		} else {
			out.CampaignCreated = campaign.ID
		}
	}

	briefs, err := s.Campaigns.List()
	if err != nil {
		return nil, err
	}
	for _, brief := range briefs {
		if brief.Status != model.CampaignActive {
			continue
		}
		rec, err := s.Campaigns.Advance(ctx, brief.ID)
		if err != nil {
			s.Log.Errorf("⚠️ Failed to advance campaign %s: %v", brief.ID, err)
			continue
		}
		s.Log.Infof("📬 Advanced campaign %s: %d steps executed", brief.ID, rec.StepsExecuted)
		out.CadencesAdvanced++
	}

	return out, nil
}
