// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/leadsource"
	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/pipeline"
	"github.com/rateworks/refi-outreach/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	DailyService    *service.DailyService
	Rates           *pipeline.RatesStore
	Source          leadsource.Source
	Originator      string
	DefaultMinScore int
	WatchScore      int
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	var leadNotFound *appErrors.ErrLeadNotFound
	var stopped *appErrors.ErrCampaignStopped
	switch {
	case errors.As(err, &notFound), errors.As(err, &leadNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &stopped):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// CreateCampaign builds a campaign from the current refi-ready pipeline.
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MinScore     *int  `json:"min_score"`
		IncludeWatch *bool `json:"include_watch"`
	}
	if r.Body != nil {
		// An empty body means defaults; a malformed one is rejected.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err.Error() != "EOF" {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}

	minScore := c.DefaultMinScore
	if body.MinScore != nil {
		minScore = *body.MinScore
	}
	includeWatch := true
	if body.IncludeWatch != nil {
		includeWatch = *body.IncludeWatch
	}

	loans, err := c.Source.Fetch()
	if err != nil {
		writeError(w, err)
		return
	}
	analysis := pipeline.Analyze(loans, c.Rates.Current())

	campaign, err := c.CampaignService.CreateCampaign(analysis.Loans, minScore, c.WatchScore, includeWatch, c.Originator, model.RefiCadence())
	if err != nil {
		var empty *appErrors.ErrEmptyEligibleSet
		if errors.As(err, &empty) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":  "no_eligible",
				"message": "No loans meet the refi threshold at current rates.",
			})
			return
		}
		writeError(w, err)
		return
	}

	leads := make([]map[string]interface{}, 0, len(campaign.Leads))
	for _, l := range campaign.Leads {
		leads = append(leads, map[string]interface{}{
			"name":    l.Name,
			"score":   l.RefiScore,
			"savings": l.MonthlySavings,
		})
	}
	schedule := make([]map[string]interface{}, 0, len(campaign.Cadence))
	for _, s := range campaign.Cadence {
		schedule = append(schedule, map[string]interface{}{"day": s.Day, "channel": s.Channel})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "created",
		"campaign_id":      campaign.ID,
		"campaign_name":    campaign.Name,
		"total_leads":      len(campaign.Leads),
		"leads":            leads,
		"cadence_schedule": schedule,
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	briefs, err := c.CampaignService.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"campaigns": briefs})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// AdvanceCampaign executes one round of due cadence steps.
func (c *CampaignController) AdvanceCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := c.CampaignService.Advance(r.Context(), id)
	if err != nil && rec == nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "executed",
		"campaign_id":    id,
		"steps_executed": rec.StepsExecuted,
		"results":        rec.Results,
	})
}

func (c *CampaignController) StopCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.CampaignService.Stop(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped", "campaign_id": id})
}

func (c *CampaignController) MarkConverted(w http.ResponseWriter, r *http.Request) {
	c.markLead(w, r, c.CampaignService.MarkConverted, model.StatusConverted)
}

func (c *CampaignController) MarkOptedOut(w http.ResponseWriter, r *http.Request) {
	c.markLead(w, r, c.CampaignService.MarkOptedOut, model.StatusOptedOut)
}

func (c *CampaignController) markLead(w http.ResponseWriter, r *http.Request, mark func(string, string) error, status model.CadenceStatus) {
	id := chi.URLParam(r, "id")
	leadID := chi.URLParam(r, "leadID")
	if err := mark(id, leadID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"campaign_id": id,
		"lead_id":     leadID,
		"status":      string(status),
	})
}

// ====================== Rates & pipeline ======================

func (c *CampaignController) GetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Rates.Current())
}

func (c *CampaignController) UpdateRates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Conventional30 *float64 `json:"conventional_30"`
		Jumbo30        *float64 `json:"jumbo_30"`
		FHA30          *float64 `json:"fha_30"`
		VA30           *float64 `json:"va_30"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	rates := c.Rates.Apply(body.Conventional30, body.Jumbo30, body.FHA30, body.VA30)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "rates": rates})
}

func (c *CampaignController) GetPipeline(w http.ResponseWriter, r *http.Request) {
	loans, err := c.Source.Fetch()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Analyze(loans, c.Rates.Current()))
}

// TriggerDaily is the manual equivalent of the cron job.
func (c *CampaignController) TriggerDaily(w http.ResponseWriter, r *http.Request) {
	result, err := c.DailyService.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
