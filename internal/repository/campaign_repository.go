// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	List() ([]*model.Campaign, error)
	UpdateStatus(campaignID, status string) error

	// Lead cadence state
	UpdateLead(campaignID string, lead *model.Lead) error
	AppendTouch(campaignID, leadID string, t model.Touch) error

	// Execution log
	AppendExecution(campaignID string, rec model.ExecutionRecord) error
}

// CampaignRepository is the Postgres-backed implementation. The
// cadence step list and per-round results are stored as JSON; lead
// cadence state and touches get their own rows so they survive a
// process restart.
type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.Status == "" {
		c.Status = model.CampaignActive
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	cadence, err := json.Marshal(c.Cadence)
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO campaigns (id, name, status, originator, cadence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(query, c.ID, c.Name, c.Status, c.Originator, cadence, c.CreatedAt); err != nil {
		return err
	}

	leadQuery := `
		INSERT INTO leads (id, campaign_id, position, name, email, phone, loan_num,
						   loan_amount, current_rate, market_rate, rate_delta,
						   monthly_savings, refi_score, cadence_day, cadence_status, last_touch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for i, l := range c.Leads {
		if _, err := tx.Exec(leadQuery, l.ID, c.ID, i, l.Name, l.Email, l.Phone, l.LoanNum,
			l.LoanAmount, l.CurrentRate, l.MarketRate, l.RateDelta,
			l.MonthlySavings, l.RefiScore, l.CadenceDay, l.CadenceStatus, l.LastTouch); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
		SELECT id, name, status, originator, cadence, created_at
		FROM campaigns WHERE id=$1
	`
	var c model.Campaign
	var cadence []byte
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Status, &c.Originator, &cadence, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	if err := json.Unmarshal(cadence, &c.Cadence); err != nil {
		return nil, err
	}

	if c.Leads, err = r.leadsFor(id); err != nil {
		return nil, err
	}
	if c.ExecutionLog, err = r.executionLogFor(id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) leadsFor(campaignID string) ([]*model.Lead, error) {
	query := `
		SELECT id, name, email, phone, loan_num, loan_amount, current_rate, market_rate,
			   rate_delta, monthly_savings, refi_score, cadence_day, cadence_status, last_touch
		FROM leads WHERE campaign_id=$1 ORDER BY position
	`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*model.Lead{}
	for rows.Next() {
		l := &model.Lead{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.LoanNum,
			&l.LoanAmount, &l.CurrentRate, &l.MarketRate, &l.RateDelta,
			&l.MonthlySavings, &l.RefiScore, &l.CadenceDay, &l.CadenceStatus, &l.LastTouch); err != nil {
			return nil, err
		}
		if l.Touches, err = r.touchesFor(campaignID, l.ID); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *CampaignRepository) touchesFor(campaignID, leadID string) ([]model.Touch, error) {
	query := `
		SELECT ts, channel, day, status
		FROM touches WHERE campaign_id=$1 AND lead_id=$2 ORDER BY id
	`
	rows, err := r.DB.Query(query, campaignID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	touches := []model.Touch{}
	for rows.Next() {
		var t model.Touch
		if err := rows.Scan(&t.Timestamp, &t.Channel, &t.Day, &t.Status); err != nil {
			return nil, err
		}
		touches = append(touches, t)
	}
	return touches, rows.Err()
}

func (r *CampaignRepository) executionLogFor(campaignID string) ([]model.ExecutionRecord, error) {
	query := `
		SELECT ts, steps_executed, results
		FROM execution_log WHERE campaign_id=$1 ORDER BY id
	`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	log := []model.ExecutionRecord{}
	for rows.Next() {
		var rec model.ExecutionRecord
		var results []byte
		if err := rows.Scan(&rec.Timestamp, &rec.StepsExecuted, &results); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &rec.Results); err != nil {
			return nil, err
		}
		log = append(log, rec)
	}
	return log, rows.Err()
}

func (r *CampaignRepository) List() ([]*model.Campaign, error) {
	query := `SELECT id FROM campaigns ORDER BY created_at DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	campaigns := []*model.Campaign{}
	for _, id := range ids {
		c, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID, status string) error {
	res, err := r.DB.Exec(`UPDATE campaigns SET status=$1 WHERE id=$2`, status, campaignID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return nil
}

// ====================== Lead cadence state ======================

func (r *CampaignRepository) UpdateLead(campaignID string, lead *model.Lead) error {
	query := `
		UPDATE leads SET cadence_day=$1, cadence_status=$2, last_touch=$3
		WHERE campaign_id=$4 AND id=$5
	`
	res, err := r.DB.Exec(query, lead.CadenceDay, lead.CadenceStatus, lead.LastTouch, campaignID, lead.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewLeadNotFound(campaignID, lead.ID)
	}
	return nil
}

func (r *CampaignRepository) AppendTouch(campaignID, leadID string, t model.Touch) error {
	query := `
		INSERT INTO touches (campaign_id, lead_id, ts, channel, day, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.Exec(query, campaignID, leadID, t.Timestamp, t.Channel, t.Day, t.Status)
	return err
}

// ====================== Execution log ======================

func (r *CampaignRepository) AppendExecution(campaignID string, rec model.ExecutionRecord) error {
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO execution_log (campaign_id, ts, steps_executed, results)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.DB.Exec(query, campaignID, rec.Timestamp, rec.StepsExecuted, results)
	return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
