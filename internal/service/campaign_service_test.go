package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/dispatch"
	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/model"
	"github.com/rateworks/refi-outreach/internal/repository"
	"github.com/rateworks/refi-outreach/internal/service"
)

// stubDispatcher records every dispatch and returns a fixed status.
type stubDispatcher struct {
	mu     sync.Mutex
	status string
	calls  []dispatch.Message
}

func (d *stubDispatcher) Dispatch(ctx context.Context, ch model.Channel, to dispatch.Recipient, msg dispatch.Message) dispatch.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, msg)
	return dispatch.Result{Status: d.status}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newService(dispatchStatus string) (*service.CampaignService, *repository.InMemoryCampaignRepository, *stubDispatcher) {
	repo := repository.NewInMemoryCampaignRepository()
	d := &stubDispatcher{status: dispatchStatus}
	return service.NewCampaignService(repo, d, quietLogger(), "987905"), repo, d
}

func seedCampaign(t *testing.T, repo *repository.InMemoryCampaignRepository, cadence []model.Step, leads ...*model.Lead) *model.Campaign {
	t.Helper()
	c := &model.Campaign{
		ID:         "refi-test",
		Name:       "Test Campaign",
		Status:     model.CampaignActive,
		Originator: "Brad Overlin",
		Cadence:    cadence,
		Leads:      leads,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("failed to seed campaign: %v", err)
	}
	return c
}

func enrolledLead(name string, day int) *model.Lead {
	return &model.Lead{
		ID:            "lead-" + name,
		Name:          name,
		CadenceDay:    day,
		CadenceStatus: model.StatusEnrolled,
		Touches:       []model.Touch{},
	}
}

// Single-step cadence: the lead gets its touch and completes.
func TestAdvanceSingleStepCompletes(t *testing.T) {
	svc, repo, d := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	rec, err := svc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StepsExecuted != 1 {
		t.Fatalf("expected 1 step executed, got %d", rec.StepsExecuted)
	}

	lead := c.Leads[0]
	if lead.CadenceStatus != model.StatusCompleted {
		t.Errorf("expected completed, got %s", lead.CadenceStatus)
	}
	if len(lead.Touches) != 1 {
		t.Fatalf("expected 1 touch, got %d", len(lead.Touches))
	}
	if lead.Touches[0].Channel != model.ChannelSMS {
		t.Errorf("expected sms touch, got %s", lead.Touches[0].Channel)
	}
	if lead.LastTouch == nil {
		t.Error("expected last_touch to be set")
	}
	if len(d.calls) != 1 || d.calls[0].Body != "Hi Maria" {
		t.Errorf("expected rendered message 'Hi Maria', got %+v", d.calls)
	}
}

// Two-step cadence: after one round the lead points at day 3 and is
// not yet completed.
func TestAdvanceMovesToNextDay(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"},
		{Day: 3, Channel: model.ChannelSMS, Body: "Still here, {name}?"},
	}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	if _, err := svc.Advance(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := c.Leads[0]
	if lead.CadenceDay != 3 {
		t.Errorf("expected cadence_day 3, got %d", lead.CadenceDay)
	}
	if lead.CadenceStatus != model.StatusInProgress {
		t.Errorf("expected in_progress, got %s", lead.CadenceStatus)
	}
}

// A lead whose day matches no step is moved along without dispatch.
func TestAdvanceSkipsUnmatchedDay(t *testing.T) {
	svc, repo, d := newService("sent")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"},
		{Day: 5, Channel: model.ChannelSMS, Body: "Hi again {name}"},
	}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 2))

	rec, err := svc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StepsExecuted != 0 {
		t.Errorf("expected no steps executed, got %d", rec.StepsExecuted)
	}
	if len(d.calls) != 0 {
		t.Errorf("expected no dispatches, got %d", len(d.calls))
	}
	if c.Leads[0].CadenceDay != 5 {
		t.Errorf("expected jump to day 5, got %d", c.Leads[0].CadenceDay)
	}
}

// Dispatch failure statuses are recorded but never block progression.
func TestAdvanceBestEffortOnDispatchError(t *testing.T) {
	svc, repo, _ := newService("error")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"},
		{Day: 3, Channel: model.ChannelSMS, Body: "Hi again {name}"},
	}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	if _, err := svc.Advance(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := c.Leads[0]
	if lead.CadenceDay != 3 {
		t.Errorf("expected progression despite dispatch error, got day %d", lead.CadenceDay)
	}
	if len(lead.Touches) != 1 || lead.Touches[0].Status != "error" {
		t.Errorf("expected touch with status 'error', got %+v", lead.Touches)
	}
}

// Terminal leads are skipped unconditionally.
func TestAdvanceSkipsOptedOut(t *testing.T) {
	svc, repo, d := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	lead := enrolledLead("Maria", 0)
	lead.CadenceStatus = model.StatusOptedOut
	c := seedCampaign(t, repo, cadence, lead)

	rec, err := svc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StepsExecuted != 0 {
		t.Errorf("expected 0 steps executed, got %d", rec.StepsExecuted)
	}
	if len(d.calls) != 0 {
		t.Errorf("expected no dispatches, got %d", len(d.calls))
	}
	if lead.CadenceDay != 0 || len(lead.Touches) != 0 {
		t.Errorf("expected opted-out lead untouched, got day %d, %d touches", lead.CadenceDay, len(lead.Touches))
	}
	if len(c.ExecutionLog) != 0 {
		t.Errorf("expected no execution record for an all-terminal round, got %d", len(c.ExecutionLog))
	}
}

// One lead's render failure must not abort the others in the same call.
func TestAdvanceIsolatesRenderFailure(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}, your {unknown_field}"},
		{Day: 3, Channel: model.ChannelSMS, Body: "Hi {name}"},
	}
	broken := enrolledLead("Maria", 0)
	healthy := enrolledLead("Carlos", 3)
	c := seedCampaign(t, repo, cadence, broken, healthy)

	rec, err := svc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if broken.CadenceDay != 0 || len(broken.Touches) != 0 {
		t.Errorf("expected failed lead left untouched for retry, got day %d", broken.CadenceDay)
	}
	if healthy.CadenceStatus != model.StatusCompleted {
		t.Errorf("expected healthy lead to advance, got %s", healthy.CadenceStatus)
	}
	if rec.StepsExecuted != 1 {
		t.Errorf("expected 1 step executed, got %d", rec.StepsExecuted)
	}

	foundError := false
	for _, res := range rec.Results {
		if res.Lead == "Maria" && res.Error != "" {
			foundError = true
		}
	}
	if !foundError {
		t.Error("expected render failure surfaced in results")
	}
}

// Monotonic progression: every non-terminal lead either moves to a
// strictly greater day or reaches a terminal status.
func TestAdvanceMonotonicProgression(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"},
		{Day: 1, Channel: model.ChannelEmail, Subject: "Hello {name}", Body: "Hi {name}"},
		{Day: 10, Channel: model.ChannelVoiceCall, Body: "Hi {name}"},
	}
	leads := []*model.Lead{
		enrolledLead("A", 0),
		enrolledLead("B", 1),
		enrolledLead("C", 10),
		enrolledLead("D", 7), // no step for day 7
	}
	c := seedCampaign(t, repo, cadence, leads...)

	before := map[string]int{}
	for _, l := range leads {
		before[l.ID] = l.CadenceDay
	}

	if _, err := svc.Advance(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, l := range leads {
		if l.CadenceStatus.Terminal() {
			continue
		}
		if l.CadenceDay <= before[l.ID] {
			t.Errorf("lead %s stalled at day %d", l.Name, l.CadenceDay)
		}
	}
}

// Idempotence: advancing a fully terminal campaign executes nothing.
func TestAdvanceAllTerminalIsNoop(t *testing.T) {
	svc, repo, d := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	if _, err := svc.Advance(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterFirst := len(d.calls)

	rec, err := svc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StepsExecuted != 0 {
		t.Errorf("expected 0 steps on terminal campaign, got %d", rec.StepsExecuted)
	}
	if len(d.calls) != callsAfterFirst {
		t.Error("expected no additional dispatches")
	}
	if len(c.ExecutionLog) != 1 {
		t.Errorf("expected execution log unchanged, got %d records", len(c.ExecutionLog))
	}
}

// A cancelled context stops the round before any lead is processed.
func TestAdvanceRespectsCancellation(t *testing.T) {
	svc, repo, d := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0), enrolledLead("Carlos", 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := svc.Advance(ctx, c.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.StepsExecuted != 0 || len(d.calls) != 0 {
		t.Errorf("expected nothing executed after cancellation, got %d steps", rec.StepsExecuted)
	}
}

// gateDispatcher blocks every dispatch until the gate is closed,
// holding one Advance mid-round so a competing call has to wait.
type gateDispatcher struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (d *gateDispatcher) Dispatch(ctx context.Context, ch model.Channel, to dispatch.Recipient, msg dispatch.Message) dispatch.Result {
	d.mu.Lock()
	d.calls++
	if d.calls == 1 {
		close(d.entered)
	}
	d.mu.Unlock()
	<-d.gate
	return dispatch.Result{Status: "sent"}
}

// Concurrent Advance calls on one campaign are serialized: the lead
// receives exactly one day-0 touch, never two.
func TestAdvanceConcurrentRoundsSerialized(t *testing.T) {
	repo := repository.NewInMemoryCampaignRepository()
	d := &gateDispatcher{entered: make(chan struct{}), gate: make(chan struct{})}
	svc := service.NewCampaignService(repo, d, quietLogger(), "987905")

	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	recs := make([]*model.ExecutionRecord, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs[i], _ = svc.Advance(context.Background(), c.ID)
		}()
	}

	// One round is inside its dispatch; give the other time to reach
	// the campaign lock before releasing both.
	<-d.entered
	time.Sleep(50 * time.Millisecond)
	close(d.gate)
	wg.Wait()

	if d.calls != 1 {
		t.Errorf("expected exactly 1 dispatch across both rounds, got %d", d.calls)
	}
	if len(c.Leads[0].Touches) != 1 {
		t.Errorf("expected exactly 1 touch, got %d", len(c.Leads[0].Touches))
	}
	if total := recs[0].StepsExecuted + recs[1].StepsExecuted; total != 1 {
		t.Errorf("expected one executed step in total, got %d", total)
	}
}

func TestAdvanceUnknownCampaign(t *testing.T) {
	svc, _, _ := newService("sent")
	_, err := svc.Advance(context.Background(), "refi-nope")
	var notFound *appErrors.ErrCampaignNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestAdvanceStoppedCampaign(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	if err := svc.Stop(c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Advance(context.Background(), c.ID)
	var stopped *appErrors.ErrCampaignStopped
	if !errors.As(err, &stopped) {
		t.Fatalf("expected ErrCampaignStopped, got %v", err)
	}
}

// ====================== Campaign Builder ======================

func candidate(name string, score int) model.LoanAnalysis {
	return model.LoanAnalysis{
		Loan:      model.Loan{Name: name, Stage: "Funded", LoanAmount: 500000},
		RefiScore: score,
	}
}

func TestCreateCampaignFiltersByScore(t *testing.T) {
	svc, _, _ := newService("sent")
	candidates := []model.LoanAnalysis{
		candidate("High", 80),
		candidate("Mid", 40),
		candidate("Low", 10),
	}

	c, err := svc.CreateCampaign(candidates, 50, 30, false, "Brad Overlin", model.RefiCadence())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Leads) != 1 || c.Leads[0].Name != "High" {
		t.Errorf("expected only the score-80 candidate enrolled, got %d leads", len(c.Leads))
	}
	if c.Leads[0].CadenceStatus != model.StatusEnrolled {
		t.Errorf("expected enrolled, got %s", c.Leads[0].CadenceStatus)
	}
	if c.Leads[0].CadenceDay != 0 {
		t.Errorf("expected first step day 0, got %d", c.Leads[0].CadenceDay)
	}
}

func TestCreateCampaignWatchTier(t *testing.T) {
	svc, _, _ := newService("sent")
	candidates := []model.LoanAnalysis{
		candidate("High", 80),
		candidate("Watch", 40),
		candidate("Low", 10),
	}

	c, err := svc.CreateCampaign(candidates, 50, 30, true, "Brad Overlin", model.RefiCadence())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Leads) != 2 {
		t.Fatalf("expected 2 leads with watch tier, got %d", len(c.Leads))
	}
	// Merged list, descending score.
	if c.Leads[0].Name != "High" || c.Leads[1].Name != "Watch" {
		t.Errorf("expected score-descending order, got %s, %s", c.Leads[0].Name, c.Leads[1].Name)
	}
}

func TestCreateCampaignEmptyEligibleSet(t *testing.T) {
	svc, _, _ := newService("sent")
	candidates := []model.LoanAnalysis{
		candidate("Low", 10),
		candidate("Lower", 5),
	}

	_, err := svc.CreateCampaign(candidates, 50, 30, false, "Brad Overlin", model.RefiCadence())
	var empty *appErrors.ErrEmptyEligibleSet
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyEligibleSet, got %v", err)
	}
	if empty.Candidates != 2 {
		t.Errorf("expected candidate count 2, got %d", empty.Candidates)
	}
}

// ====================== Terminal transitions ======================

func TestMarkTerminalIsFinal(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"}}
	c := seedCampaign(t, repo, cadence, enrolledLead("Maria", 0))

	if err := svc.MarkConverted(c.ID, c.Leads[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Leads[0].CadenceStatus != model.StatusConverted {
		t.Fatalf("expected converted, got %s", c.Leads[0].CadenceStatus)
	}

	// A terminal status never transitions again.
	if err := svc.MarkOptedOut(c.ID, c.Leads[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Leads[0].CadenceStatus != model.StatusConverted {
		t.Errorf("expected converted to stick, got %s", c.Leads[0].CadenceStatus)
	}
}

// ====================== Status Reporter ======================

func TestStatusSummary(t *testing.T) {
	svc, repo, _ := newService("sent")
	cadence := []model.Step{
		{Day: 0, Channel: model.ChannelSMS, Body: "Hi {name}"},
		{Day: 3, Channel: model.ChannelSMS, Body: "Hi {name}"},
	}
	done := enrolledLead("Done", 0)
	done.CadenceStatus = model.StatusCompleted
	out := enrolledLead("Out", 0)
	out.CadenceStatus = model.StatusOptedOut
	c := seedCampaign(t, repo, cadence, enrolledLead("Fresh", 0), done, out)

	status, err := svc.Status(c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Summary["enrolled"] != 1 || status.Summary["completed"] != 1 || status.Summary["opted_out"] != 1 {
		t.Errorf("unexpected summary: %+v", status.Summary)
	}
	if len(status.Leads) != 3 {
		t.Errorf("expected 3 lead snapshots, got %d", len(status.Leads))
	}
}

func TestStatusEmptyCampaign(t *testing.T) {
	svc, repo, _ := newService("sent")
	c := seedCampaign(t, repo, model.RefiCadence())

	status, err := svc.Status(c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for k, v := range status.Summary {
		if v != 0 {
			t.Errorf("expected zero count for %s, got %d", k, v)
		}
	}
}
