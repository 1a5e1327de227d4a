// cmd/server/main.go
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rateworks/refi-outreach/internal/config"
	"github.com/rateworks/refi-outreach/internal/controller"
	"github.com/rateworks/refi-outreach/internal/db"
	"github.com/rateworks/refi-outreach/internal/dispatch"
	"github.com/rateworks/refi-outreach/internal/handler"
	"github.com/rateworks/refi-outreach/internal/leadsource"
	"github.com/rateworks/refi-outreach/internal/logger"
	"github.com/rateworks/refi-outreach/internal/pipeline"
	"github.com/rateworks/refi-outreach/internal/queue"
	"github.com/rateworks/refi-outreach/internal/repository"
	"github.com/rateworks/refi-outreach/internal/scheduler"
	"github.com/rateworks/refi-outreach/internal/sender"
	"github.com/rateworks/refi-outreach/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	// Campaign store: Postgres when configured, in-memory otherwise.
	var campaignRepo repository.CampaignRepositoryInterface
	var source leadsource.Source
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to DB: %v", err)
		}
		defer conn.Close()
		campaignRepo = &repository.CampaignRepository{DB: conn}
		source = leadsource.NewPostgresSource(conn)
		log.Info("✅ Connected to database")
	} else {
		campaignRepo = repository.NewInMemoryCampaignRepository()
		source = leadsource.NewStaticSource()
		log.Warn("⚠️ No DATABASE_URL set, campaigns held in memory, demo pipeline served")
	}

	// Dispatch path: RabbitMQ when configured, in-process queue with
	// local senders otherwise; DISPATCH_MODE=simulated bypasses both.
	var dispatcher dispatch.Dispatcher
	if cfg.DispatchMode == "simulated" {
		dispatcher = dispatch.NewSimulatedDispatcher(time.Now().UnixNano())
		log.Info("🎲 Dispatch simulation enabled")
	} else if cfg.AMQPURL != "" {
		mq, err := queue.NewAMQPQueue(cfg.AMQPURL, log)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mq.Close()
		dispatcher = dispatch.NewQueueDispatcher(mq)
		log.Info("✅ Connected to RabbitMQ, worker consumes dispatches")
	} else {
		q := queue.NewInMemoryQueue(log)
		dispatch.StartSubscriber(q, sender.New(cfg, log), log)
		dispatcher = dispatch.NewQueueDispatcher(q)
	}

	rates := pipeline.NewRatesStore()

	campaignService := service.NewCampaignService(campaignRepo, dispatcher, log, cfg.NMLS)
	dailyService := &service.DailyService{
		Campaigns:  campaignService,
		Source:     source,
		Rates:      rates,
		Log:        log,
		MinScore:   cfg.MinScore,
		WatchScore: cfg.WatchScore,
		Originator: cfg.Originator,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		DailyService:    dailyService,
		Rates:           rates,
		Source:          source,
		Originator:      cfg.Originator,
		DefaultMinScore: cfg.MinScore,
		WatchScore:      cfg.WatchScore,
	}
	campaignHandler := handler.NewCampaignHandler(campaignService)

	daily := scheduler.NewDailyScheduler(dailyService, log, cfg.CronSpecDaily)
	if err := daily.Start(); err != nil {
		log.Fatalf("failed to start daily scheduler: %v", err)
	}
	defer daily.Stop()

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/api/campaigns", campaignController.CreateCampaign)
	r.Get("/api/campaigns", campaignController.ListCampaigns)
	r.Get("/api/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/api/campaigns/{id}/advance", campaignController.AdvanceCampaign)
	r.Post("/api/campaigns/{id}/stop", campaignController.StopCampaign)
	r.Get("/api/campaigns/{id}/status", campaignHandler.GetCampaignStatusHandler)
	r.Post("/api/campaigns/{id}/leads/{leadID}/convert", campaignController.MarkConverted)
	r.Post("/api/campaigns/{id}/leads/{leadID}/opt-out", campaignController.MarkOptedOut)

	// Rates & pipeline
	r.Get("/api/rates", campaignController.GetRates)
	r.Post("/api/rates", campaignController.UpdateRates)
	r.Get("/api/pipeline", campaignController.GetPipeline)

	// Daily trigger (manual equivalent of the cron job)
	r.Post("/api/trigger-daily", campaignController.TriggerDaily)

	r.Get("/api/health", campaignHandler.HealthHandler)

	log.Infof("🚀 Server running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
